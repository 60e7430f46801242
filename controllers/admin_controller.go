package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"support-backend-go/services"
)

// GetAdminMetricsHandler reports usage counters for operators.
func GetAdminMetricsHandler(c *gin.Context) {
	metrics := services.GetAdminMetrics(services.Users, services.History)
	c.JSON(http.StatusOK, metrics)
}

// ListUsersHandler returns the known usernames. Hashes never leave the
// store through this endpoint.
func ListUsersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": services.Users.Usernames()})
}
