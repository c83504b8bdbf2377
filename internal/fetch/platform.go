package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformBDJobs     Platform = "bdjobs"
	PlatformUnknown    Platform = "unknown"
)

type platformRule struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformRules = []platformRule{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformLinkedIn,
		hosts:    []string{"linkedin.com"},
		content:  []string{".show-more-less-html__markup", ".description__text", ".jobs-description__content"},
		noise:    []string{".top-card-layout__cta-container", ".similar-jobs", ".sign-in-modal"},
	},
	{
		platform: PlatformBDJobs,
		hosts:    []string{"bdjobs.com"},
		content:  []string{".job-details", "#job-details", ".jobcontent", ".job_des"},
		noise:    []string{".apply-online", ".share-job", ".job-summary-apply"},
	},
}

// commonNoise is removed from every job page regardless of platform.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

func ruleFor(platform Platform) *platformRule {
	for i := range platformRules {
		if platformRules[i].platform == platform {
			return &platformRules[i]
		}
	}
	return nil
}

// DetectPlatform identifies the job board from a URL's host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	for _, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return rule.platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform, ending
// with the generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	rule := ruleFor(platform)
	if rule == nil {
		return JobPostingSelectors()
	}
	return append(append([]string{}, rule.content...), JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns noise exclusion selectors for a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string{}, commonNoise...)
	if rule := ruleFor(platform); rule != nil {
		noise = append(noise, rule.noise...)
	}
	return noise
}
