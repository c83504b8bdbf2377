package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/app"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/types"
)

// multipartMemory is how much of a multipart form is held in memory.
const multipartMemory = 32 << 20

// AnalysisRequestBody is the JSON form of an analysis submission.
type AnalysisRequestBody struct {
	CVText         string `json:"cvText"`
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl"`
	Market         string `json:"market"`
}

// AnalysisResponse wraps the recorded analysis.
type AnalysisResponse struct {
	Item *types.HistoryItem `json:"item"`
}

// readAnalysisInput accepts multipart (with an optional file) or JSON bodies.
func (s *Server) readAnalysisInput(r *http.Request) (app.FormInput, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return app.FormInput{}, "", analysis.InputFailure(ingestion.ErrFileTooLarge.Error(), err)
			}
			return app.FormInput{}, "", &ErrValidation{Field: "body", Message: "invalid multipart form"}
		}
		in := app.FormInput{
			CVText:         r.FormValue("cvText"),
			JobDescription: r.FormValue("jobDescription"),
			Market:         r.FormValue("market"),
		}
		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return app.FormInput{}, "", &ErrValidation{Field: "file", Message: err.Error()}
		default:
			defer func() { _ = file.Close() }()
			upload, err := ingestion.ReadUpload(file, header.Filename, header.Header.Get("Content-Type"))
			if err != nil {
				return app.FormInput{}, "", analysis.Classify(err)
			}
			in.File = upload
		}
		return in, strings.TrimSpace(r.FormValue("jobUrl")), nil
	}

	var body AnalysisRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return app.FormInput{}, "", &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	in := app.FormInput{
		CVText:         body.CVText,
		JobDescription: body.JobDescription,
		Market:         body.Market,
	}
	return in, strings.TrimSpace(body.JobURL), nil
}

// resolveJobDescription fills the job description from jobURL when no text was given.
func (s *Server) resolveJobDescription(ctx context.Context, in *app.FormInput, jobURL string) error {
	if jobURL == "" || strings.TrimSpace(in.JobDescription) != "" {
		return nil
	}
	if s.fetchJob == nil {
		return analysis.InputFailure("Job description URLs are not supported by this server.", nil)
	}
	text, err := s.fetchJob(ctx, jobURL)
	if err != nil {
		s.logger.Warn("failed to fetch job description", "url", jobURL, "error", err)
		return analysis.InputFailure("Could not read the job description from the given URL.", err)
	}
	in.JobDescription = text
	return nil
}

// handleCreateAnalysis runs one analysis and returns the recorded item.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	in, jobURL, err := s.readAnalysisInput(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.resolveJobDescription(r.Context(), &in, jobURL); err != nil {
		s.errorResponse(w, err)
		return
	}

	item, err := s.controller.SubmitForm(r.Context(), in)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, AnalysisResponse{Item: item})
}

// handleAnalysisStream runs one analysis and streams progress via SSE.
func (s *Server) handleAnalysisStream(w http.ResponseWriter, r *http.Request) {
	in, jobURL, err := s.readAnalysisInput(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	progress := func(stage, message string) {
		if err := sse.WriteProgress(stage, message); err != nil {
			s.logger.Warn("failed to write SSE event", "error", err)
		}
	}
	fail := func(err error) {
		sse.WriteError(err)
		sse.WriteComplete("", "failed")
	}

	progress("received", "Input received")
	if jobURL != "" && strings.TrimSpace(in.JobDescription) == "" {
		progress("fetching_job_description", "Reading job description")
		if err := s.resolveJobDescription(r.Context(), &in, jobURL); err != nil {
			fail(err)
			return
		}
	}

	progress("analyzing", "Analyzing CV")
	item, err := s.controller.SubmitForm(r.Context(), in)
	if err != nil {
		fail(err)
		return
	}

	if err := sse.WriteEvent("result", AnalysisResponse{Item: item}); err != nil {
		s.logger.Warn("failed to write SSE result", "error", err)
		return
	}
	sse.WriteComplete(item.ID, "completed")
}
