package handlers

import (
	"net/http"

	"github.com/hirmezb/tasktracker/internal/auth"
	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/dto"
	"github.com/hirmezb/tasktracker/internal/logging"
	"github.com/hirmezb/tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles register, login and logout.
type AuthHandler struct {
	userSvc *service.UserService
	revoked *auth.RevocationStore
	log     logging.Logger
}

// NewAuthHandler returns a new AuthHandler. revoked may be nil, in which case logout
// only acknowledges and the token stays valid until it expires.
func NewAuthHandler(userSvc *service.UserService, revoked *auth.RevocationStore, log logging.Logger) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, revoked: revoked, log: log}
}

// Register godoc
// @Summary      Register
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "New account"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.userSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	h.log.Info(c.Request.Context(), "user registered", "user_id", res.User.ID)
	c.JSON(http.StatusCreated, authResponse(res))
}

// Login godoc
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, authResponse(res))
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented token until it expires.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MessageResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := auth.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := h.revoked.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			writeServiceError(c, h.log, err)
			return
		}
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func authResponse(res service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{Token: res.Token, User: userToResponse(res.User)}
}
