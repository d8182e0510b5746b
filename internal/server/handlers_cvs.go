package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// SaveCVRequest is the body of POST /cvs and PUT /cvs/{id}.
type SaveCVRequest struct {
	Name     string            `json:"name"`
	Data     json.RawMessage   `json:"data"`
	Settings *types.CVSettings `json:"settings,omitempty"`
}

// decode checks the raw document against the schema before decoding it.
func (req *SaveCVRequest) decode() (types.CVData, types.CVSettings, error) {
	var cv types.CVData
	if len(req.Data) == 0 {
		return cv, types.CVSettings{}, errors.New("data is required")
	}
	if err := schemas.ValidateCV(req.Data); err != nil {
		return cv, types.CVSettings{}, err
	}
	if err := json.Unmarshal(req.Data, &cv); err != nil {
		return cv, types.CVSettings{}, errors.New("invalid document")
	}
	if err := cv.Validate(); err != nil {
		return cv, types.CVSettings{}, err
	}
	settings := types.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
		if err := settings.Validate(); err != nil {
			return cv, settings, err
		}
	}
	return cv, settings, nil
}

// userScope returns the caller id and the document service, writing the
// error response when either is missing.
func (s *Server) userScope(w http.ResponseWriter, r *http.Request) (string, *store.Service, bool) {
	if s.deps.CVs == nil {
		s.unavailable(w, "document storage")
		return "", nil, false
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.unauthorized(w, r)
		return "", nil, false
	}
	return userID.String(), s.deps.CVs, true
}

func (s *Server) handleListCVs(w http.ResponseWriter, r *http.Request) {
	userID, cvs, ok := s.userScope(w, r)
	if !ok {
		return
	}
	list, err := cvs.List(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) saveCV(w http.ResponseWriter, r *http.Request, id string, status int) {
	userID, cvs, ok := s.userScope(w, r)
	if !ok {
		return
	}
	var req SaveCVRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	data, settings, err := req.decode()
	if err != nil {
		s.requestError(w, r, err)
		return
	}

	savedID, err := cvs.Save(r.Context(), userID, req.Name, data, settings, id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, status, map[string]string{"id": savedID})
}

func (s *Server) handleCreateCV(w http.ResponseWriter, r *http.Request) {
	s.saveCV(w, r, "", http.StatusCreated)
}

func (s *Server) handleUpdateCV(w http.ResponseWriter, r *http.Request) {
	s.saveCV(w, r, r.PathValue("id"), http.StatusOK)
}

func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	userID, cvs, ok := s.userScope(w, r)
	if !ok {
		return
	}
	cv, err := cvs.Load(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if cv == nil {
		s.errorResponse(w, r, store.ErrNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, cv)
}

func (s *Server) handleDeleteCV(w http.ResponseWriter, r *http.Request) {
	userID, cvs, ok := s.userScope(w, r)
	if !ok {
		return
	}
	if err := cvs.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveEntityRequest is the body of POST /cvs/{id}/{section}/{entityId}/move.
type MoveEntityRequest struct {
	To int `json:"to"`
}

// editCV applies edit to a copy of the caller's saved document and stores
// it. The stored document is untouched when edit fails.
func (s *Server) editCV(w http.ResponseWriter, r *http.Request, edit func(*types.CVData) error) {
	userID, cvs, ok := s.userScope(w, r)
	if !ok {
		return
	}
	saved, err := cvs.Load(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if saved == nil {
		s.errorResponse(w, r, store.ErrNotFound)
		return
	}
	data := saved.Data.Clone()
	if err := edit(&data); err != nil {
		if errors.Is(err, types.ErrEntityNotFound) {
			s.errorResponse(w, r, err)
			return
		}
		s.requestError(w, r, err)
		return
	}
	if _, err := cvs.Save(r.Context(), userID, saved.Name, data, saved.Settings, saved.ID); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, data)
}

func (s *Server) handleReplaceEntity(w http.ResponseWriter, r *http.Request) {
	var next json.RawMessage
	if err := decodeJSON(w, r, &next); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	s.editCV(w, r, func(cv *types.CVData) error {
		return cv.Replace(types.SectionID(r.PathValue("section")), r.PathValue("entityId"), next)
	})
}

func (s *Server) handleRemoveEntity(w http.ResponseWriter, r *http.Request) {
	s.editCV(w, r, func(cv *types.CVData) error {
		return cv.Remove(types.SectionID(r.PathValue("section")), r.PathValue("entityId"))
	})
}

func (s *Server) handleMoveEntity(w http.ResponseWriter, r *http.Request) {
	var req MoveEntityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	s.editCV(w, r, func(cv *types.CVData) error {
		return cv.Move(types.SectionID(r.PathValue("section")), r.PathValue("entityId"), req.To)
	})
}
