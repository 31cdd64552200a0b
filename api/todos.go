package api

import (
	"errors"
	"net/http"

	"github.com/Skryldev/todo-api/models"
	"github.com/Skryldev/todo-api/store"
)

type createTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type completeTodoRequest struct {
	Completed *bool `json:"completed"`
}

// owner is only called behind Authenticate.
func owner(r *http.Request) int64 {
	id, _ := UserIDFromContext(r.Context())
	return id
}

// GET /api/v1/todos?offset=&limit=
func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeValidation(w, err)
		return
	}
	limit, err := queryInt(r, "limit", store.DefaultLimit)
	if err != nil {
		writeValidation(w, err)
		return
	}
	if limit < 1 {
		writeValidation(w, errors.New("limit: must be between 1 and 1000"))
		return
	}

	todos, err := s.todos.List(r.Context(), owner(r), offset, limit)
	if err != nil {
		s.fail(w, r, err, "Error retrieving todos")
		return
	}
	writeJSON(w, http.StatusOK, todos, "Todos retrieved successfully")
}

// POST /api/v1/todos
func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, err)
		return
	}
	if req.Title == nil {
		writeValidation(w, errors.New("title: field required"))
		return
	}

	todo, err := s.todos.Create(r.Context(), owner(r), models.CreateTodoParams{
		Title:       *req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		s.fail(w, r, err, "Error creating todo")
		return
	}
	writeJSON(w, http.StatusCreated, todo, "Todo created successfully")
}

// GET /api/v1/todos/{id}
func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	todo, err := s.todos.Get(r.Context(), id, owner(r))
	if err != nil {
		s.fail(w, r, err, "Error retrieving todo")
		return
	}
	writeJSON(w, http.StatusOK, todo, "Todo retrieved successfully")
}

// PUT /api/v1/todos/{id}. Partial: omitted or null fields keep their value.
func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	var req updateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, err)
		return
	}

	todo, err := s.todos.Update(r.Context(), id, owner(r), models.UpdateTodoParams{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		s.fail(w, r, err, "Error updating todo")
		return
	}
	writeJSON(w, http.StatusOK, todo, "Todo updated successfully")
}

// PATCH /api/v1/todos/{id}/complete
func (s *Server) completeTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	var req completeTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, err)
		return
	}
	if req.Completed == nil {
		writeValidation(w, errors.New("completed: field required"))
		return
	}

	todo, err := s.todos.SetCompleted(r.Context(), id, owner(r), *req.Completed)
	if err != nil {
		s.fail(w, r, err, "Error updating todo completion status")
		return
	}
	writeJSON(w, http.StatusOK, todo, "Todo completion status updated successfully")
}

// DELETE /api/v1/todos/{id}
func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	deleted, err := s.todos.Delete(r.Context(), id, owner(r))
	if err != nil {
		s.fail(w, r, err, "Error deleting todo")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	writeJSON(w, http.StatusOK, nil, "Todo deleted successfully")
}

// DELETE /api/v1/todos
func (s *Server) deleteAllTodos(w http.ResponseWriter, r *http.Request) {
	if _, err := s.todos.DeleteAll(r.Context(), owner(r)); err != nil {
		s.fail(w, r, err, "Error deleting all todos")
		return
	}
	writeJSON(w, http.StatusOK, nil, "All todos deleted successfully")
}
