// Package app owns the application state shared by the CLI and the API: the
// input form, the current analysis, the active dashboard tab, history and the
// headshot pipeline. State changes only through Controller actions.
package app

import (
	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/types"
)

// Phase is the main pipeline state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
	PhaseResults   Phase = "results"
	PhaseError     Phase = "error"
)

// Tab is a dashboard view of the current result.
type Tab string

const (
	TabOverview    Tab = "overview"
	TabKeywords    Tab = "keywords"
	TabSections    Tab = "sections"
	TabTemplates   Tab = "templates"
	TabInterview   Tab = "interview"
	TabCoverLetter Tab = "coverLetter"
	TabLinkedIn    Tab = "linkedin"
	TabProjects    Tab = "projects"
	TabPhoto       Tab = "photo"
)

// Tabs lists the dashboard tabs in display order.
func Tabs() []Tab {
	return []Tab{TabOverview, TabKeywords, TabSections, TabTemplates, TabInterview, TabCoverLetter, TabLinkedIn, TabProjects, TabPhoto}
}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	for _, known := range Tabs() {
		if t == known {
			return true
		}
	}
	return false
}

// Form is the analysis input. A file and pasted text are mutually exclusive.
type Form struct {
	CVText         string       `json:"cvText"`
	FileName       string       `json:"fileName,omitempty"`
	FileSize       int          `json:"fileSize,omitempty"`
	JobDescription string       `json:"jobDescription"`
	Market         types.Market `json:"market"`

	file    *ingestion.File
	payload *types.CVPayload
}

// HasFile reports whether a file is selected.
func (f Form) HasFile() bool {
	return f.file != nil
}

// HeadshotState tracks the independent photo pipeline.
type HeadshotState struct {
	InProgress bool                    `json:"inProgress"`
	Result     *types.HeadshotAnalysis `json:"result,omitempty"`
	Error      *analysis.Failure       `json:"error,omitempty"`
}

// State is a point-in-time view of the application.
type State struct {
	Phase Phase `json:"phase"`
	Form  Form  `json:"form"`
	// FormError is an input-validation message shown next to the form.
	FormError  string                `json:"formError,omitempty"`
	Error      *analysis.Failure     `json:"error,omitempty"`
	Current    *types.AnalysisResult `json:"current,omitempty"`
	ActiveTab  Tab                   `json:"activeTab"`
	History    []types.HistoryItem   `json:"history"`
	SelectedID string                `json:"selectedId,omitempty"`
	Headshot   HeadshotState         `json:"headshot"`
}

// clone copies everything a caller could mutate. Results and history items
// are immutable snapshots, so their pointers are shared.
func (s State) clone() State {
	out := s
	out.History = append([]types.HistoryItem(nil), s.History...)
	if out.History == nil {
		out.History = []types.HistoryItem{}
	}
	out.Form.file = nil
	out.Form.payload = nil
	if s.Headshot.Result != nil {
		h := *s.Headshot.Result
		h.Tips = append([]string(nil), h.Tips...)
		out.Headshot.Result = &h
	}
	return out
}
