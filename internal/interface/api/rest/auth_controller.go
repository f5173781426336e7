package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/domain/apperr"
	"file-vault-api/internal/interface/api/rest/dto/auth"
	"file-vault-api/internal/interface/api/rest/middleware"
	"file-vault-api/internal/interface/api/rest/validator"
)

type AuthController struct {
	logger      *zap.Logger
	authService ports.AuthService
}

func NewAuthController(
	r *gin.Engine,
	logger *zap.Logger,
	authService ports.AuthService,
) *AuthController {
	ac := &AuthController{
		logger:      logger,
		authService: authService,
	}

	r.POST(RouteRegister, ac.RegisterHandler)
	r.POST(RouteLogin, ac.LoginHandler)
	r.POST(RouteLogout, middleware.AuthMiddleware(authService), ac.LogoutHandler)
	r.GET(RouteMe, middleware.AuthMiddleware(authService), ac.MeHandler)

	return ac
}

func (ac *AuthController) RegisterHandler(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateRegister(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	u, err := ac.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := statusFromErr(err)
		if status == http.StatusInternalServerError {
			ac.logger.Error("Register() error", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, auth.ToResponseUser(*u))
}

func (ac *AuthController) LoginHandler(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateLogin(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	token, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to login"},
		)
		ac.logger.Error("Login() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

func (ac *AuthController) LogoutHandler(c *gin.Context) {
	token := c.GetString(middleware.CtxToken)

	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to logout"},
		)
		ac.logger.Error("Logout() error", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (ac *AuthController) MeHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.GetString(middleware.CtxUserID))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	u, err := ac.authService.CurrentUser(c.Request.Context(), id)
	if err != nil {
		status, msg := statusFromErr(err)
		if status == http.StatusInternalServerError {
			ac.logger.Error("CurrentUser() error", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, auth.ToResponseUser(*u))
}
