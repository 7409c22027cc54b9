package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	appMiddleware "task-manager/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Handler отвечает только за HTTP: роуты, разбор JSON, статус-коды.
// Бизнес-правила живут в Service.
type Handler struct {
	svc     *Service
	timeout time.Duration
}

// NewHandler создаёт Handler. timeout ограничивает каждый запрос; 0 отключает.
func NewHandler(svc *Service, timeout time.Duration) *Handler {
	return &Handler{svc: svc, timeout: timeout}
}

// Router собирает роуты задач.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/tasks", func(r chi.Router) {
		r.Use(appMiddleware.JSONHeaderMiddleware)
		if h.timeout > 0 {
			r.Use(appMiddleware.RequestTimeoutMiddleware(h.timeout))
		}

		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Get("/{id}", h.getTask)
		r.Put("/{id}", h.updateTask)
		r.Delete("/{id}", h.deleteTask)
	})
	return r
}

// GET /tasks (список)
func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	q, violations := ParseListQuery(r.URL.Query())
	if len(violations) > 0 {
		h.writeError(w, h.svc.validate.ValidateListQuery(q, violations...))
		return
	}

	page, err := h.svc.ListTasks(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// POST /tasks (создание)
func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	created, err := h.svc.CreateTask(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /tasks/{id} (одна задача)
func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	task, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// PUT /tasks/{id} (обновление). Меняются только поля из тела.
func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req UpdateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	updated, err := h.svc.UpdateTask(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DELETE /tasks/{id} (удаление)
func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.svc.DeleteTask(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type errorResponse struct {
	Error   string      `json:"error"`
	Details []Violation `json:"details,omitempty"`
	ID      int64       `json:"id,omitempty"`
}

// writeError переводит ошибки сервиса в статус-коды. Детали ошибок
// хранилища клиенту не отдаются.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if h.handleContextError(w, err) {
		return
	}

	var (
		validationErr *ValidationError
		badRequestErr *BadRequestError
		notFoundErr   *NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation failed",
			Details: validationErr.Violations,
		})
	case errors.As(err, &badRequestErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: badRequestErr.Reason})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found", ID: notFoundErr.ID})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// handleContextError обрабатывает отмену и таймаут.
func (h *Handler) handleContextError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		// Клиент ушёл или сервер останавливается: отвечать некому.
		return true
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusRequestTimeout, errorResponse{Error: "request timeout"})
		return true
	default:
		return false
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, &BadRequestError{Reason: "invalid id", Err: err}
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &BadRequestError{Reason: "invalid JSON body", Err: err}
	}
	return nil
}

// writeJSON: Content-Type уже выставил JSONHeaderMiddleware.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
