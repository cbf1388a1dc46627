package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/charstorm/toposphere/internal/server/services"
)

type noteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (req noteRequest) input() services.NoteInput {
	return services.NoteInput{Title: req.Title, Content: req.Content}
}

func (s *RESTServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	notes, count, err := s.notes.List(r.Context(), userIDFromContext(r.Context()), searchParam(r), limit, offset)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope{Count: count, Results: notes})
}

func (s *RESTServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := s.notes.Create(r.Context(), userIDFromContext(r.Context()), req.input())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *RESTServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *RESTServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	s.updateNote(w, r, false)
}

func (s *RESTServer) handlePatchNote(w http.ResponseWriter, r *http.Request) {
	s.updateNote(w, r, true)
}

func (s *RESTServer) updateNote(w http.ResponseWriter, r *http.Request, partial bool) {
	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := s.notes.Update(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "noteID"), req.input(), partial)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *RESTServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "noteID")); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
