// Package analysis turns a CV analysis request into exactly one structured
// model call and classifies everything that can go wrong along the way.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/prompts"
	"github.com/jonathan/cv-architect/internal/types"
	schemafiles "github.com/jonathan/cv-architect/schemas"
)

const promptFile = prompts.AnalysisFile

// Temperature is the sampling temperature of every analysis call.
const Temperature float32 = 0.4

// ErrNoCVContent is returned when a request carries neither text nor a file.
//
//nolint:staticcheck // shown to the user verbatim
var ErrNoCVContent = errors.New("No CV content provided")

// BuildRequest produces the single outbound model request for req. It fails
// without touching the network when the CV payload is empty or the request
// is otherwise invalid.
func BuildRequest(req *types.AnalysisRequest) (*llm.Request, error) {
	if req == nil || req.CV.IsEmpty() {
		return nil, ErrNoCVContent
	}
	if err := req.Validate(); err != nil {
		return nil, InputFailure(describeValidation(err), err)
	}

	prompt, err := BuildPrompt(req.Market, req.JobDescription)
	if err != nil {
		return nil, err
	}
	system, err := prompts.Get(promptFile, "system-instruction")
	if err != nil {
		return nil, err
	}

	parts := []llm.Part{llm.TextPart(prompt)}
	if req.CV.IsBinary() {
		parts = append(parts, llm.BlobPart(req.CV.MIMEType, req.CV.Data))
	} else {
		cvBlock, err := prompts.Render(promptFile, "cv-text", map[string]string{"CVText": req.CV.Text})
		if err != nil {
			return nil, err
		}
		parts = append(parts, llm.TextPart(cvBlock))
	}

	return &llm.Request{
		Task:              llm.TaskAnalysis,
		SystemInstruction: system,
		Temperature:       llm.Float32(Temperature),
		ResponseSchema:    schemafiles.Analysis(),
		Parts:             parts,
	}, nil
}

// BuildPrompt renders the instruction block for a market and optional job
// description.
func BuildPrompt(market types.Market, jobDescription string) (string, error) {
	convention := market.SalaryConvention()
	period := string(convention.Period)
	locale := ""
	if market == types.MarketBangladesh {
		locale = " typical for Dhaka"
	}

	jdBlock, err := jobDescriptionBlock(jobDescription)
	if err != nil {
		return "", err
	}
	return prompts.Render(promptFile, "analyze-cv", map[string]string{
		"Market":            string(market),
		"SalaryPeriod":      strings.ToUpper(period[:1]) + period[1:],
		"SalaryPeriodLower": period,
		"Currency":          convention.Currency,
		"SalaryLocale":      locale,
		"JobDescription":    jdBlock,
	})
}

func jobDescriptionBlock(jobDescription string) (string, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return prompts.Get(promptFile, "job-description-missing")
	}
	return prompts.Render(promptFile, "job-description", map[string]string{"JobDescription": jobDescription})
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Market" && fe.Tag() == "required":
		return "Please choose a target market."
	case fe.Field() == "Market":
		return fmt.Sprintf("Unsupported market %q.", fe.Value())
	case fe.Field() == "JobDescription":
		return "Job description is too long."
	case fe.Tag() == "exclusive":
		return "Provide either a file or pasted text, not both."
	default:
		return fmt.Sprintf("Invalid %s.", strings.ToLower(fe.Field()))
	}
}
