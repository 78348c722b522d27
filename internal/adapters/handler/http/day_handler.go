package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monkmode/tracker/internal/adapters/handler/http/middleware"
	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/monkmode/tracker/internal/core/services"
)

type DayHandler struct {
	svc *services.DayService
}

func NewDayHandler(svc *services.DayService) *DayHandler {
	return &DayHandler{
		svc: svc,
	}
}

func (h *DayHandler) RegisterRoutes(router *gin.RouterGroup) {
	today := router.Group("/today")
	{
		today.GET("", h.GetToday)
		today.POST("/tasks/:id/toggle", h.ToggleTask)
	}
}

func (h *DayHandler) GetToday(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	view, err := h.svc.LoadToday(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no protocol configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *DayHandler) ToggleTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	taskID := c.Param("id")

	result, err := h.svc.ToggleTask(c.Request.Context(), userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProtocolNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no protocol configured"})
		case errors.Is(err, domain.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
