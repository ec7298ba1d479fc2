package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/haulbridge/freight-tasks/internal/http/middleware"
	"github.com/haulbridge/freight-tasks/internal/model"
	"github.com/haulbridge/freight-tasks/internal/service"
)

type Handler struct {
	tasks       *service.TaskService
	bids        *service.BidService
	assignments *service.AssignmentService
	exports     *service.ExportService
	log         zerolog.Logger
}

func NewHandler(
	tasks *service.TaskService,
	bids *service.BidService,
	assignments *service.AssignmentService,
	exports *service.ExportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{tasks: tasks, bids: bids, assignments: assignments, exports: exports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/tasks", h.createTask)
	protected.GET("/tasks", h.listTasks)
	protected.GET("/tasks/export", h.exportTasks)
	protected.GET("/tasks/:id", h.getTask)
	protected.PATCH("/tasks/:id", h.updateTask)
	protected.DELETE("/tasks/:id", h.deleteTask)
	protected.PATCH("/tasks/:id/status", h.transitionStatus)
	protected.PATCH("/tasks/:id/carrier", h.reassignCarrier)
	protected.POST("/tasks/:id/retender", h.retender)
	protected.POST("/tasks/:id/activate", h.activateTask)
	protected.GET("/tasks/:id/bids", h.listTaskBids)
	protected.GET("/tasks/:id/document", h.taskDocument)

	protected.POST("/bids", h.submitBid)
	protected.GET("/bids", h.listBids)
	protected.POST("/bids/:id/accept", h.acceptBid)
}

type createTaskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Pickup      string   `json:"pickup"`
	Dropoff     string   `json:"dropoff"`
	ScheduledAt *string  `json:"scheduledAt"`
	Price       *float64 `json:"price"`
	Notes       *string  `json:"notes"`
	CustomerID  *uint    `json:"customerId"`
	CarrierID   *uint    `json:"carrierId"`
	Status      *string  `json:"status"`
}

func (h *Handler) createTask(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateTaskInput{
		Title:      req.Title,
		Pickup:     req.Pickup,
		Dropoff:    req.Dropoff,
		Price:      req.Price,
		Notes:      req.Notes,
		CustomerID: req.CustomerID,
		CarrierID:  req.CarrierID,
	}
	if req.ScheduledAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduledAt"})
			return
		}
		input.ScheduledAt = &parsed
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) listTasks(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.tasks.ListTasks(c.Request.Context(), principal, service.ListTasksInput{
		Query:    c.Query("q"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getTask(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Title              *string  `json:"title"`
	Price              *float64 `json:"price"`
	Notes              *string  `json:"notes"`
	Paid               *bool    `json:"paid"`
	IsPublished        *bool    `json:"isPublished"`
	PublishNow         bool     `json:"publishNow"`
	Unpublish          bool     `json:"unpublish"`
	VisibleAfterMs     *int64   `json:"visibleAfterMsFromNow"`
	RequiresActivation *bool    `json:"requiresActivation"`
}

func (h *Handler) updateTask(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), principal, id, service.UpdateTaskInput{
		Title:              req.Title,
		Price:              req.Price,
		Notes:              req.Notes,
		Paid:               req.Paid,
		IsPublished:        req.IsPublished,
		PublishNow:         req.PublishNow,
		Unpublish:          req.Unpublish,
		VisibleAfterMs:     req.VisibleAfterMs,
		RequiresActivation: req.RequiresActivation,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) deleteTask(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type transitionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) transitionStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.TransitionStatus(c.Request.Context(), principal, id, model.TaskStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type reassignCarrierRequest struct {
	CarrierID *uint `json:"carrierId"`
}

func (h *Handler) reassignCarrier(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req reassignCarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.assignments.ReassignCarrier(c.Request.Context(), principal, id, req.CarrierID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type retenderRequest struct {
	ClearWhitelist bool `json:"clearWhitelist"`
}

func (h *Handler) retender(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	// Body is optional; an empty body means clearWhitelist=false.
	var req retenderRequest
	_ = c.ShouldBindJSON(&req)

	task, err := h.assignments.Retender(c.Request.Context(), principal, id, req.ClearWhitelist)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) activateTask(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.ActivateTask(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) listTaskBids(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	bids, err := h.bids.ListTaskBids(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

type submitBidRequest struct {
	TaskID  uint    `json:"taskId" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
	Message *string `json:"message"`
}

func (h *Handler) submitBid(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req submitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.bids.SubmitBid(c.Request.Context(), principal, service.SubmitBidInput{
		TaskID:  req.TaskID,
		Amount:  req.Amount,
		Message: req.Message,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

func (h *Handler) listBids(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	bids, err := h.bids.ListBids(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

func (h *Handler) acceptBid(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.assignments.AcceptBid(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) exportTasks(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	result, err := h.exports.ExportRegister(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) taskDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.exports.ExportTaskDocument(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSameStatus),
		errors.Is(err, service.ErrInvalidCarrier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskClosed),
		errors.Is(err, service.ErrDuplicateBid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
