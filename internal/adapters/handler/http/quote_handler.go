package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// QuoteHandler serves the dashboard's rotating motivational quotes. The list
// is static; clients rotate through it locally.
type QuoteHandler struct {
	quotes []string
}

func NewQuoteHandler() *QuoteHandler {
	return &QuoteHandler{
		quotes: []string{
			"In the silence of discipline lies the path to mastery.",
			"Every moment of focus builds the foundation of greatness.",
			"Through solitude, we discover our true strength.",
			"Discipline is the bridge between goals and accomplishment.",
			"In monk mode, we transform ourselves one day at a time.",
		},
	}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/quotes", h.List)
}

func (h *QuoteHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quotes": h.quotes})
}
