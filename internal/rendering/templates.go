package rendering

import (
	"fmt"
	"sort"
	"strings"
)

// TemplateKind names a downloadable CV template.
type TemplateKind string

const (
	TemplateATS       TemplateKind = "ats"
	TemplateExecutive TemplateKind = "executive"
	TemplateFresher   TemplateKind = "fresher"
)

type cvTemplate struct {
	filename string
	content  string
}

var cvTemplates = map[TemplateKind]cvTemplate{
	TemplateATS: {
		filename: "ATS_Standard_CV_Template.doc",
		content: `
<h1>[YOUR NAME]</h1>
<p class="contact">[City, State, Zip Code] | [Phone Number] | [Email Address] | [LinkedIn URL]</p>
<h2>PROFESSIONAL SUMMARY</h2>
<p>[3-4 sentences summarizing your experience, key skills, and major achievements, tailored to the job description. Avoid using "I" or "My". Focus on value delivered.]</p>
<h2>CORE COMPETENCIES</h2>
<p><strong>Skills:</strong> [Skill 1] &bull; [Skill 2] &bull; [Skill 3] &bull; [Skill 4] &bull; [Skill 5] &bull; [Skill 6]<br/><strong>Tools:</strong> [Tool 1] &bull; [Tool 2] &bull; [Tool 3]</p>
<h2>PROFESSIONAL EXPERIENCE</h2>
<p><strong>[Job Title]</strong> &nbsp;|&nbsp; [Company Name] &nbsp;|&nbsp; [City, State] <span style="float:right"><strong>[Month, Year] – Present</strong></span></p>
<ul><li>[Action Verb] [Task/Project] resulting in [Quantifiable Outcome/Metric].</li><li>[Action Verb] [Task] using [Tools/Skills] to achieve [Result].</li></ul>
<h2>EDUCATION</h2>
<p><strong>[Degree Name]</strong> in [Major] &nbsp;|&nbsp; [University Name] <span style="float:right">[Year]</span></p>
`,
	},
	TemplateExecutive: {
		filename: "Modern_Executive_CV_Template.doc",
		content: `
<h1 style="color: #2e5cb8;">[YOUR NAME]</h1>
<p>[Contact Info]</p>
<hr/>
<h2 style="color: #2e5cb8;">SENIOR EXECUTIVE PROFILE</h2>
<p>Visionary Executive with [Number]+ years of experience...</p>
<h2 style="color: #2e5cb8;">CAREER HIGHLIGHTS</h2>
<ul><li><strong>Revenue Growth:</strong> Delivered $XXM...</li></ul>
<h2 style="color: #2e5cb8;">PROFESSIONAL EXPERIENCE</h2>
<p><strong>[Company]</strong> | [Role]</p>
`,
	},
	TemplateFresher: {
		filename: "Academic_Fresher_CV_Template.doc",
		content: `
<h1>[YOUR NAME]</h1>
<p>[Contact Info]</p>
<h2>EDUCATION</h2>
<p><strong>[Degree]</strong> | [University]</p>
<h2>PROJECTS</h2>
<p><strong>[Project]</strong></p>
<ul><li>Details...</li></ul>
<h2>SKILLS</h2>
<ul><li>List...</li></ul>
`,
	},
}

// TemplateKinds lists the available template kinds in a stable order.
func TemplateKinds() []TemplateKind {
	kinds := make([]TemplateKind, 0, len(cvTemplates))
	for k := range cvTemplates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// CVTemplate returns the Word-compatible CV template of the given kind.
func CVTemplate(kind string) (Document, error) {
	t, ok := cvTemplates[TemplateKind(strings.ToLower(strings.TrimSpace(kind)))]
	if !ok {
		return Document{}, fmt.Errorf("unknown template %q (valid: ats, executive, fresher)", kind)
	}
	return WordDocument(t.filename, t.content), nil
}
