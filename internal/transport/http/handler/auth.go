package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"displaydeck/internal/app"
	"displaydeck/internal/transport/http/middleware"
	"displaydeck/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Register(app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUsernameExists):
			response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, err.Error())
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "register failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"operator": gin.H{
			"id":       result.Operator.ID,
			"username": result.Operator.Username,
			"email":    result.Operator.Email,
			"role":     result.Operator.Role,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"operator": gin.H{
			"id":       result.Operator.ID,
			"username": result.Operator.Username,
			"email":    result.Operator.Email,
			"role":     result.Operator.Role,
		},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	operator, err := h.authService.GetOperatorByID(operatorID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch current operator failed")
		return
	}
	if operator == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "operator not found")
		return
	}

	response.OK(c, gin.H{
		"id":       operator.ID,
		"username": operator.Username,
		"email":    operator.Email,
		"role":     operator.Role,
	})
}

func getOperatorIDFromContext(c *gin.Context) (uint, bool) {
	idAny, exists := c.Get(middleware.ContextOperatorIDKey)
	if !exists {
		return 0, false
	}
	id, ok := idAny.(uint)
	return id, ok
}
