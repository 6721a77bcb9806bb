package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	dom "github.com/codewithkim/todo-api/internal/domain"
	"github.com/codewithkim/todo-api/internal/dto"
	"github.com/codewithkim/todo-api/internal/service"

	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	svc *service.TodoService
	log *slog.Logger
}

func NewTodoHandler(svc *service.TodoService, log *slog.Logger) *TodoHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TodoHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List todos
// @Description  Paginated, sorted, searched and filtered list. Unknown sortBy values fall back to created_at.
// @Tags         todos
// @Produce      json
// @Param        page                  query     int     false  "Page, minimum 1"  default(1)
// @Param        per_page              query     int     false  "Page size, clamped to 1..100"  default(15)
// @Param        sortBy                query     string  false  "id|title|created_at|updated_at|is_completed"  default(created_at)
// @Param        sortDir               query     string  false  "asc|desc"  default(desc)
// @Param        search                query     string  false  "Case-insensitive substring of title or description"
// @Param        filter[is_completed]  query     string  false  "1 or true for completed, 0 or false for open; other values are ignored"
// @Success      200  {object}  dto.ListTodosResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), listQueryFromRequest(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(c, page))
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TodoRequest  true  "title required"
// @Success      201   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	req, ok := bindTodoRequest(c)
	if !ok {
		return
	}
	changes, err := dto.ValidateCreate(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), changes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todoToResponse(t))
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(t))
}

// Replace godoc
// @Summary      Replace a todo
// @Description  title is required; omitted description and is_completed keep their values.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Todo ID"
// @Param        body  body      dto.TodoRequest  true  "Full update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Replace(c *gin.Context) {
	h.update(c, dto.ValidateReplace)
}

// Patch godoc
// @Summary      Partially update a todo
// @Description  Only fields present in the body change. description may be null to clear it.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int              true   "Todo ID"
// @Param        body  body      dto.TodoRequest  false  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos/{id} [patch]
func (h *TodoHandler) Patch(c *gin.Context) {
	h.update(c, dto.ValidatePatch)
}

func (h *TodoHandler) update(c *gin.Context, validate func(dto.TodoRequest) (dom.TodoChanges, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// 404 wins over a bad body, so look the row up first.
	existing, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	req, ok := bindTodoRequest(c)
	if !ok {
		return
	}
	changes, err := validate(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	t, err := h.svc.Apply(c.Request.Context(), existing, changes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Param        id   path  int  true  "Todo ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindTodoRequest(c *gin.Context) (dto.TodoRequest, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "could not read request body"})
		return dto.TodoRequest{}, false
	}
	req, err := dto.DecodeTodoRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed JSON body"})
		return dto.TodoRequest{}, false
	}
	return req, true
}

// writeError maps service and validation errors onto status codes.
func (h *TodoHandler) writeError(c *gin.Context, err error) {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "validation failed", Errors: verr.Errors})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "title already exists"})
	default:
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func todoToResponse(t dom.Todo) dto.TodoResponse {
	resp := dto.TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.TargetEndDate != nil {
		d := t.TargetEndDate.Format("2006-01-02")
		resp.TargetEndDate = &d
	}
	return resp
}

func todosToResponses(list []dom.Todo) []dto.TodoResponse {
	out := make([]dto.TodoResponse, len(list))
	for i := range list {
		out[i] = todoToResponse(list[i])
	}
	return out
}

func pageToResponse(c *gin.Context, p dom.TodoPage) dto.ListTodosResponse {
	last := p.LastPage()
	meta := dto.ListMeta{
		Page:     p.Page,
		PerPage:  p.PerPage,
		Total:    p.Total,
		LastPage: last,
	}
	if n := len(p.Items); n > 0 {
		from := (p.Page-1)*p.PerPage + 1
		to := from + n - 1
		meta.From, meta.To = &from, &to
	}

	links := dto.ListLinks{First: pageURL(c, 1), Last: pageURL(c, last)}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		links.Prev = &prev
	}
	if p.Page < last {
		next := pageURL(c, p.Page+1)
		links.Next = &next
	}
	return dto.ListTodosResponse{Data: todosToResponses(p.Items), Meta: meta, Links: links}
}
