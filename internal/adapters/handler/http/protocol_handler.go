package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monkmode/tracker/internal/adapters/handler/http/middleware"
	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/monkmode/tracker/internal/core/services"
)

type ProtocolHandler struct {
	svc *services.ProtocolService
}

func NewProtocolHandler(svc *services.ProtocolService) *ProtocolHandler {
	return &ProtocolHandler{
		svc: svc,
	}
}

type taskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type putProtocolRequest struct {
	DurationDays *int          `json:"duration" binding:"required"`
	Tasks        []taskRequest `json:"tasks" binding:"required"`
}

func (h *ProtocolHandler) RegisterRoutes(router *gin.RouterGroup) {
	protocol := router.Group("/protocol")
	{
		protocol.GET("", h.Get)
		protocol.PUT("", h.Put)
	}
}

func (h *ProtocolHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	protocol, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no protocol configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, protocol)
}

// Put creates the protocol or replaces it wholesale. Task identifiers are
// reissued on every write, so clients must treat the response as the new
// source of truth.
func (h *ProtocolHandler) Put(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req putProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.ProtocolInput{
		DurationDays: req.DurationDays,
	}
	for _, t := range req.Tasks {
		input.Tasks = append(input.Tasks, domain.TaskInput{
			Name:        t.Name,
			Description: t.Description,
		})
	}

	protocol, err := h.svc.CreateOrEdit(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoDuration),
			errors.Is(err, domain.ErrInvalidDuration),
			errors.Is(err, domain.ErrNoTasks),
			errors.Is(err, domain.ErrTaskNameTooLong),
			errors.Is(err, domain.ErrTaskDescTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, protocol)
}
