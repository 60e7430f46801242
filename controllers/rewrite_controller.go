package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"support-backend-go/config"
	"support-backend-go/models"
	"support-backend-go/services"
)

// RewriteHandler sends the user's draft to the completion endpoint and
// returns the polished version.
func RewriteHandler(c *gin.Context) {
	var req models.RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		config.Log.Error("Invalid rewrite request: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !services.SupportedLanguage(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language must be EN or FR"})
		return
	}

	sessionID := c.MustGet("sessionID").(string)

	// The user turn is kept even when the rewrite fails; only the
	// assistant turn is skipped then.
	services.History.AppendTurn(sessionID, "user", req.Text)

	rewritten, err := services.Rewriter.Rewrite(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		config.Log.Error("Rewrite failed: ", err)
		status, category := classifyRewriteError(err)
		c.JSON(status, gin.H{"error": err.Error(), "category": category})
		return
	}

	services.History.AppendTurn(sessionID, "assistant", rewritten)

	c.JSON(http.StatusOK, models.RewriteResponse{
		Rewritten: rewritten,
		Language:  req.Language,
	})
}

// classifyRewriteError maps a rewrite failure to its HTTP status and
// reporting category. Categories stay distinct per failure class.
func classifyRewriteError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedLanguage):
		return http.StatusBadRequest, "language_error"
	case errors.Is(err, services.ErrBadStatus):
		return http.StatusBadGateway, "status_error"
	case errors.Is(err, services.ErrBadResponse):
		return http.StatusBadGateway, "parse_error"
	case errors.Is(err, services.ErrEmptyResponse):
		return http.StatusBadGateway, "empty_response_error"
	default:
		return http.StatusBadGateway, "request_error"
	}
}

// GetHistory returns the session's conversation turns in order.
func GetHistory(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	turns := services.History.Turns(sessionID)
	if turns == nil {
		turns = []models.ChatTurn{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": turns})
}

// ClearHistory discards the session's conversation.
func ClearHistory(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)
	services.History.Clear(sessionID)

	c.JSON(http.StatusOK, gin.H{"message": "History cleared"})
}
