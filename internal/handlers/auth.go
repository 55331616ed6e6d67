package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaycall/signaling/internal/auth"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
}

// Login checks the room password and mints a persistent token the client can
// store and present on later visits instead of the password.
func Login(gateway *auth.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		if !gateway.VerifyPassword(req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid password",
			})
			return
		}

		token, err := gateway.IssueToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate token",
			})
			return
		}

		c.JSON(http.StatusOK, LoginResponse{Token: token})
	}
}
