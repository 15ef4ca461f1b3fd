package handler

import (
	"context"
	"net/http"
	"time"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc     service.IdentityService
	timeout time.Duration
}

func NewUserHandler(svc service.IdentityService, timeout time.Duration) *UserHandler {
	return &UserHandler{svc: svc, timeout: timeout}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	user, err := h.svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", dto.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	user, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", dto.LoginResponse{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
}

// CheckUsername reports whether :username is taken. Matching is exact and case-sensitive.
func (h *UserHandler) CheckUsername(c *gin.Context) {
	username := c.Param("username")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	exists, err := h.svc.UsernameExists(ctx, username)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Username is available"
	if exists {
		message = "Username is taken"
	}
	respond(c, http.StatusOK, message, dto.UsernameCheckResponse{
		Exists:   exists,
		Username: username,
	})
}
