package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/app"
	"github.com/jonathan/cv-architect/internal/ingestion"
	"github.com/jonathan/cv-architect/internal/types"
)

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.Snapshot())
}

// TabRequest selects a dashboard tab.
type TabRequest struct {
	Tab app.Tab `json:"tab"`
}

func (s *Server) handleSelectTab(w http.ResponseWriter, r *http.Request) {
	var req TabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := s.controller.SelectTab(req.Tab); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.controller.Reset()
	s.jsonResponse(w, http.StatusOK, s.controller.Snapshot())
}

// handleHeadshot analyzes the multipart "photo" upload.
func (s *Server) handleHeadshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, analysis.InputFailure(ingestion.ErrFileTooLarge.Error(), err))
			return
		}
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "photo", Message: "photo is required"})
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := ingestion.ReadUpload(file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		s.errorResponse(w, analysis.Classify(err))
		return
	}

	result, err := s.controller.AnalyzeHeadshot(r.Context(), upload.Data, upload.MIMEType)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleToken exchanges the operator password for a bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.jwtService == nil || !s.passwords.Enabled() {
		s.errorResponse(w, ErrAuthNotConfigured)
		return
	}

	var req types.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, validationError(err))
		return
	}
	if !s.passwords.Authenticate(req.Password) {
		s.errorResponse(w, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TokenResponse{Token: token, ExpiresAt: expiresAt.Unix()})
}

func validationError(err error) *ErrValidation {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ErrValidation{Field: verrs[0].Field(), Message: verrs[0].Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid request"}
}
