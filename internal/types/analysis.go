package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// Score is an integer rating in [0, 100]. It accepts whole-valued JSON
// floats (e.g. 85.0) because the model sometimes emits them.
type Score int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("score %v is not an integer", f)
	}
	*s = Score(f)
	return nil
}

// Scores holds the sub-scores of an analysis.
type Scores struct {
	ATS        Score `json:"atsScore"`
	Keyword    Score `json:"keywordMatch"`
	Skills     Score `json:"skillsScore"`
	Experience Score `json:"experienceScore"`
	Format     Score `json:"formatScore"`
	Overall    Score `json:"overallScore"`
}

// KeywordGap lists job-description keywords found and missing in the CV.
type KeywordGap struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
	Score   Score    `json:"score"`
}

// SectionStatus grades a CV section.
type SectionStatus string

// Section statuses.
const (
	StatusGood     SectionStatus = "good"
	StatusWarning  SectionStatus = "warning"
	StatusCritical SectionStatus = "critical"
	StatusMissing  SectionStatus = "missing"
)

// SectionFeedback is the feedback for one CV section.
type SectionFeedback struct {
	Name       string        `json:"sectionName"`
	Status     SectionStatus `json:"status"`
	Feedback   string        `json:"feedback"`
	Suggestion string        `json:"suggestion"`
}

// SalaryEstimate is a display-ready salary range.
type SalaryEstimate struct {
	Min         string `json:"min"`
	Max         string `json:"max"`
	Currency    string `json:"currency"`
	Explanation string `json:"explanation"`
}

// LinkedInAudit holds profile suggestions.
type LinkedInAudit struct {
	Headline         string   `json:"headline"`
	AboutSummary     string   `json:"aboutSummary"`
	MissingSections  []string `json:"missingSections"`
	BannerSuggestion string   `json:"bannerSuggestion"`
}

// ResourceType is the kind of a learning resource.
type ResourceType string

// Resource types.
const (
	ResourceCourse  ResourceType = "Course"
	ResourceArticle ResourceType = "Article"
	ResourceProject ResourceType = "Project"
)

// LearningResource points at material for closing a skill gap.
type LearningResource struct {
	Skill          string       `json:"skill"`
	Recommendation string       `json:"recommendation"`
	Type           ResourceType `json:"type"`
}

// Difficulty grades a project idea.
type Difficulty string

// Difficulties.
const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// ProjectIdea is a portfolio project suggested to fill an experience gap.
type ProjectIdea struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TechStack   []string   `json:"techStack"`
	Difficulty  Difficulty `json:"difficulty"`
}

// AnalysisResult is the structured analysis returned by the AI model.
// Timestamp (epoch millis) is stamped locally after the response is parsed.
type AnalysisResult struct {
	Scores             Scores             `json:"scores"`
	Summary            string             `json:"summary"`
	JobTitleDetected   string             `json:"jobTitleDetected"`
	Strengths          []string           `json:"strengths"`
	Weaknesses         []string           `json:"weaknesses"`
	Keywords           KeywordGap         `json:"keywords"`
	SectionAnalysis    []SectionFeedback  `json:"sectionAnalysis"`
	RewrittenSummary   string             `json:"rewrittenSummary,omitempty"`
	MarketFit          string             `json:"marketFit"`
	InterviewQuestions []string           `json:"interviewQuestions"`
	CoverLetter        string             `json:"coverLetter"`
	SalaryEstimation   SalaryEstimate     `json:"salaryEstimation"`
	LinkedInAudit      LinkedInAudit      `json:"linkedinAudit"`
	LearningPath       []LearningResource `json:"learningPath"`
	ProjectIdeas       []ProjectIdea      `json:"projectIdeas"`
	Timestamp          int64              `json:"timestamp,omitempty"`
}

// Normalize replaces nil slices with empty ones so the result always
// serializes lists as [] rather than null.
func (r *AnalysisResult) Normalize() {
	r.Strengths = nonNil(r.Strengths)
	r.Weaknesses = nonNil(r.Weaknesses)
	r.Keywords.Present = nonNil(r.Keywords.Present)
	r.Keywords.Missing = nonNil(r.Keywords.Missing)
	r.InterviewQuestions = nonNil(r.InterviewQuestions)
	r.LinkedInAudit.MissingSections = nonNil(r.LinkedInAudit.MissingSections)
	if r.SectionAnalysis == nil {
		r.SectionAnalysis = []SectionFeedback{}
	}
	if r.LearningPath == nil {
		r.LearningPath = []LearningResource{}
	}
	if r.ProjectIdeas == nil {
		r.ProjectIdeas = []ProjectIdea{}
	}
	for i := range r.ProjectIdeas {
		r.ProjectIdeas[i].TechStack = nonNil(r.ProjectIdeas[i].TechStack)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
