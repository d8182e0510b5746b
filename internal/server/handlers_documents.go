package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/cv-builder/internal/analysis"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/jonathan/cv-builder/internal/types"
)

// DocumentRequest carries a document and its presentation settings.
// Settings default when omitted.
type DocumentRequest struct {
	Data       *types.CVData     `json:"data"`
	Settings   *types.CVSettings `json:"settings,omitempty"`
	DocumentID string            `json:"documentId,omitempty"`
}

func (req *DocumentRequest) resolve() (*types.CVData, types.CVSettings, error) {
	if req.Data == nil {
		return nil, types.CVSettings{}, errors.New("data is required")
	}
	settings := types.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
		if err := settings.Validate(); err != nil {
			return nil, settings, err
		}
	}
	return req.Data, settings, nil
}

// TemplateInfo describes one template for GET /templates.
type TemplateInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Layout string `json:"layout"`
	RootID string `json:"rootId"`
}

// RenderResponse is the JSON form of a rendered visual tree.
type RenderResponse struct {
	RootID     string `json:"rootId"`
	TemplateID string `json:"templateId"`
	WidthPx    int    `json:"widthPx"`
	HTML       string `json:"html"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	ids := templates.All()
	out := make([]TemplateInfo, 0, len(ids))
	for _, id := range ids {
		name, layout := templates.Describe(id)
		out = append(out, TemplateInfo{ID: string(id), Name: name, Layout: string(layout), RootID: templates.RootID(id)})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// render decodes a document request and renders it. It writes the error
// response itself and returns nil on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request, req *DocumentRequest) *templates.VisualTree {
	cv, settings, err := req.resolve()
	if err != nil {
		s.requestError(w, r, err)
		return nil
	}
	tree, err := templates.Render(cv, settings)
	if err != nil {
		s.errorResponse(w, r, err)
		return nil
	}
	return tree
}

// requestError reports a malformed request. Validation errors keep their
// field detail.
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		s.jsonResponse(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": validationErr.Fields})
		return
	}
	if HTTPStatus(err) == http.StatusBadRequest {
		s.errorResponse(w, r, err)
		return
	}
	s.badRequest(w, err.Error())
}

// handleRender returns the rendered visual tree. With ?format=html the
// standalone HTML document is returned instead of JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	tree := s.render(w, r, &req)
	if tree == nil {
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(tree.HTML))
		return
	}
	s.jsonResponse(w, http.StatusOK, RenderResponse{
		RootID:     tree.RootID,
		TemplateID: string(tree.TemplateID),
		WidthPx:    tree.WidthPx,
		HTML:       tree.HTML,
	})
}

// StatsResponse adds per-section completion to the completeness stats.
type StatsResponse struct {
	analysis.Stats
	Sections map[string]bool `json:"sections"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	var cv types.CVData
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if err := json.Unmarshal(req.Data, &cv); err != nil {
			s.badRequest(w, "Invalid document")
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, StatsResponse{
		Stats:    analysis.ComputeStats(&cv),
		Sections: analysis.SectionStatus(&cv),
	})
}
