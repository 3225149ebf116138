package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService services.UserService
}

func NewAuthController(userService services.UserService) *AuthController {
	return &AuthController{userService: userService}
}

// Register godoc
// @Summary Register
// @Description Create a customer account and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "Account details"
// @Success 201 {object} models.Response{data=models.AuthPayload}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payload, err := ac.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Message: "User registered successfully", Data: payload})
}

// Login godoc
// @Summary Login
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Response{data=models.AuthPayload}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payload, err := ac.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Message: "Login successful", Data: payload})
}

// Profile godoc
// @Summary Current user
// @Description The authenticated caller's own profile
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/auth/profile [get]
func (ac *AuthController) Profile(c *gin.Context) {
	user, err := ac.userService.Profile(c.Request.Context(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
