package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/charstorm/toposphere/internal/server/services"
)

type todoListRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (req todoListRequest) input() services.TodoListInput {
	return services.TodoListInput{Title: req.Title, Description: req.Description}
}

type todoItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

func (req todoItemRequest) input() services.TodoItemInput {
	return services.TodoItemInput{Title: req.Title, Description: req.Description, IsCompleted: req.IsCompleted}
}

func (s *RESTServer) handleListTodoLists(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	lists, count, err := s.todos.ListLists(r.Context(), userIDFromContext(r.Context()), searchParam(r), limit, offset)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope{Count: count, Results: lists})
}

func (s *RESTServer) handleCreateTodoList(w http.ResponseWriter, r *http.Request) {
	var req todoListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	list, err := s.todos.CreateList(r.Context(), userIDFromContext(r.Context()), req.input())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *RESTServer) handleGetTodoList(w http.ResponseWriter, r *http.Request) {
	list, err := s.todos.GetList(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "listID"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *RESTServer) handleUpdateTodoList(w http.ResponseWriter, r *http.Request) {
	s.updateTodoList(w, r, false)
}

func (s *RESTServer) handlePatchTodoList(w http.ResponseWriter, r *http.Request) {
	s.updateTodoList(w, r, true)
}

func (s *RESTServer) updateTodoList(w http.ResponseWriter, r *http.Request, partial bool) {
	var req todoListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	list, err := s.todos.UpdateList(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "listID"), req.input(), partial)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *RESTServer) handleDeleteTodoList(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.DeleteList(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "listID")); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RESTServer) handleListTodoItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.todos.ListItems(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "listID"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope{Count: len(items), Results: items})
}

func (s *RESTServer) handleCreateTodoItem(w http.ResponseWriter, r *http.Request) {
	var req todoItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := s.todos.CreateItem(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "listID"), req.input())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *RESTServer) handleGetTodoItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.todos.GetItem(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "itemID"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *RESTServer) handleUpdateTodoItem(w http.ResponseWriter, r *http.Request) {
	s.updateTodoItem(w, r, false)
}

func (s *RESTServer) handlePatchTodoItem(w http.ResponseWriter, r *http.Request) {
	s.updateTodoItem(w, r, true)
}

func (s *RESTServer) updateTodoItem(w http.ResponseWriter, r *http.Request, partial bool) {
	var req todoItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := s.todos.UpdateItem(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "itemID"), req.input(), partial)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *RESTServer) handleDeleteTodoItem(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.DeleteItem(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "itemID")); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
