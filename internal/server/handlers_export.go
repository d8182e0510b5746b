package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/cv-builder/internal/export"
)

// PDFExportRequest is the body of POST /export/pdf.
type PDFExportRequest struct {
	DocumentRequest
	Options export.PDFOptions `json:"options"`
	// Store uploads the artifact and returns a download URL instead of bytes.
	Store bool `json:"store,omitempty"`
}

// ImageExportRequest is the body of POST /export/image.
type ImageExportRequest struct {
	DocumentRequest
	Options export.ImageOptions `json:"options"`
	Store   bool                `json:"store,omitempty"`
}

// PrintRequest is the body of POST /export/print.
type PrintRequest struct {
	DocumentRequest
	Options     export.PrintOptions `json:"options"`
	Stylesheets []string            `json:"stylesheets,omitempty"`
}

// StoredArtifact is returned when an export is uploaded.
type StoredArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Pages       int    `json:"pages,omitempty"`
	Key         string `json:"key"`
	URL         string `json:"url"`
}

// exportKey scopes the single-flight latch to one caller and one document.
func exportKey(r *http.Request, documentID string) string {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		documentID = "default"
	}
	return clientID(r) + "|" + documentID
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	var req PDFExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	tree := s.render(w, r, &req.DocumentRequest)
	if tree == nil {
		return
	}

	artifact, err := s.deps.Exports.ExportPDF(r.Context(), exportKey(r, req.DocumentID), tree, req.Options)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.deliver(w, r, artifact, req.Store)
}

func (s *Server) handleExportImage(w http.ResponseWriter, r *http.Request) {
	var req ImageExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	tree := s.render(w, r, &req.DocumentRequest)
	if tree == nil {
		return
	}

	artifact, err := s.deps.Exports.ExportImage(r.Context(), exportKey(r, req.DocumentID), tree, req.Options)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.deliver(w, r, artifact, req.Store)
}

// deliver streams the artifact as a download, or uploads it when asked to.
func (s *Server) deliver(w http.ResponseWriter, r *http.Request, a *export.Artifact, upload bool) {
	if upload {
		if s.deps.Artifacts == nil {
			s.unavailable(w, "artifact storage")
			return
		}
		key, url, err := s.deps.Artifacts.Store(r.Context(), a.Filename, a.ContentType, a.Bytes)
		if err != nil {
			s.logger.Error(r.Context(), "artifact upload failed", "filename", a.Filename, "error", err)
			s.jsonResponse(w, http.StatusBadGateway, map[string]string{"error": genericExportMessage})
			return
		}
		s.jsonResponse(w, http.StatusCreated, StoredArtifact{
			Filename: a.Filename, ContentType: a.ContentType, Pages: a.Pages, Key: key, URL: url,
		})
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Bytes)))
	if a.Pages > 0 {
		w.Header().Set("X-Export-Pages", strconv.Itoa(a.Pages))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(a.Bytes); err != nil {
		s.logger.Warn(r.Context(), "failed to write artifact", "filename", a.Filename, "error", err)
	}
}

// handleExportPrint returns the print document and, when a printer is
// configured, sends it to the printer in the background.
func (s *Server) handleExportPrint(w http.ResponseWriter, r *http.Request) {
	var req PrintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	tree := s.render(w, r, &req.DocumentRequest)
	if tree == nil {
		return
	}
	if req.Options.Title == "" && req.Data != nil {
		req.Options.Title = req.Data.Contact.FullName()
	}

	doc, err := s.deps.Exports.Print(r.Context(), exportKey(r, req.DocumentID), tree, req.Options, req.Stylesheets...)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
