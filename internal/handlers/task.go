package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
	"go.uber.org/zap"
)

const taskDeletedMessage = "task deleted"

// TaskHandler provides HTTP handlers for the caller's tasks.
type TaskHandler struct {
	taskService *services.TaskService
	validate    *validator.Validate
	log         *zap.Logger
}

// NewTaskHandler constructs a handler with the provided service.
func NewTaskHandler(taskService *services.TaskService, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{
		taskService: taskService,
		validate:    newValidator(),
		log:         log,
	}
}

// TaskRouter registers task routes on the given router, every one of them
// behind authMiddleware.
func TaskRouter(r chi.Router, handler *TaskHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)

	r.Get("/", handler.ListTasks)
	r.Post("/", handler.CreateTask)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Put("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
	})
}

// ListTasks handles GET /api/tasks?status=&priority=&search=&sortBy=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	tasks, err := h.taskService.List(r.Context(), types.TaskQuery{
		OwnerID:  user.ID,
		Status:   params.Get("status"),
		Priority: params.Get("priority"),
		Search:   params.Get("search"),
		SortBy:   types.ParseTaskSort(params.Get("sortBy")),
	})
	if err != nil {
		respondError(w, r, h.log, errInternal, err)
		return
	}
	if tasks == nil {
		tasks = []types.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, errInvalidRequest, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	fields, err := missingFields(h.validate, req)
	if err != nil {
		respondError(w, r, h.log, errInternal, err)
		return
	}
	if len(fields) > 0 {
		respondError(w, r, h.log, missingField(fields), nil)
		return
	}

	task, err := h.taskService.Create(r.Context(), user.ID, types.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{taskID}. Fields absent from the body
// keep their values; ownership cannot be changed.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		respondError(w, r, h.log, errNotFound, err)
		return
	}

	var patch types.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, h.log, errInvalidRequest, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), user.ID, taskID, patch)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{taskID}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		respondError(w, r, h.log, errNotFound, err)
		return
	}

	if err := h.taskService.Delete(r.Context(), user.ID, taskID); err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: taskDeletedMessage})
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

func (h *TaskHandler) currentUser(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, r, h.log, errUnauthenticated, nil)
	}
	return user, ok
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *services.MissingFieldError
	switch {
	case errors.As(err, &missing):
		respondError(w, r, h.log, missingField(missing.Fields), err)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, h.log, apiError{http.StatusNotFound, CodeNotFound, "task not found", ""}, err)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, r, h.log, errForbidden, err)
	default:
		respondError(w, r, h.log, errInternal, err)
	}
}

func parseTaskID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "taskID"))
}
