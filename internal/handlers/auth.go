package handlers

import (
	"errors"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"medilink-server/internal/config"
	"medilink-server/internal/middleware"
	"medilink-server/internal/models"
	"medilink-server/internal/services"
	"medilink-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, profiles *services.ProfileService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Auth: auth, Profiles: profiles, Cfg: cfg}
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"Email" binding:"required,email"`
	Password string `json:"Password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	User models.AccountSanitized `json:"user"`
	Role models.Role             `json:"role"`
}

// Login handles POST /login/:role. A successful login establishes a
// persistent server-side session; the cookie only carries its opaque ID.
func (h *AuthHandler) Login(c *gin.Context) {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil {
		// An unknown role table is indistinguishable from bad credentials.
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	acct, err := h.Auth.Authenticate(role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Login failed")
		}
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionKeyUserID, acct.ID)
	sess.Set(middleware.SessionKeyEmail, acct.Email)
	sess.Set(middleware.SessionKeyRole, string(role))
	sess.Options(sessions.Options{
		Path:     "/",
		MaxAge:   h.Cfg.SessionIdleMinutes * 60,
		HttpOnly: true,
		Secure:   h.Cfg.Environment != "development",
	})
	if err := sess.Save(); err != nil {
		utils.InternalServerError(c, "Failed to establish session")
		return
	}

	c.Set(middleware.AuditUserIDKey, acct.ID)
	c.Set(middleware.AuditRoleKey, role)

	utils.Success(c, "Login successful", LoginResponse{User: acct, Role: role})
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name           string `json:"Name" binding:"required"`
	Email          string `json:"Email" binding:"required,email"`
	Password       string `json:"Password" binding:"required,min=8"`
	DoctorID       string `json:"DoctorID"`                  // patients only
	DateOfBirth    string `json:"DateOfBirth"`               // patients only, YYYY-MM-DD
	Specialisation string `json:"Specialisation,omitempty"`  // doctors only
}

// Register handles POST /register/:role.
func (h *AuthHandler) Register(c *gin.Context) {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil {
		utils.BadRequest(c, "Unknown role: "+c.Param("role"))
		return
	}

	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	input := services.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		DoctorID:       req.DoctorID,
		Specialisation: req.Specialisation,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "DateOfBirth must be YYYY-MM-DD")
			return
		}
		input.DateOfBirth = &dob
	}

	acct, err := h.Auth.Register(role, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			utils.Conflict(c, "Email already registered for this role")
		case errors.Is(err, services.ErrInvalidDoctor):
			utils.BadRequest(c, "A valid DoctorID is required for patient registration")
		default:
			utils.InternalServerError(c, "Registration failed")
		}
		return
	}

	c.Set(middleware.AuditUserIDKey, acct.ID)
	c.Set(middleware.AuditRoleKey, role)

	utils.Created(c, "Registration successful", LoginResponse{User: acct, Role: role})
}

// Logout destroys the server-side session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		utils.InternalServerError(c, "Failed to clear session")
		return
	}
	utils.Success(c, "Logout successful", nil)
}

// Me returns the caller's own sanitized profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	acct, err := h.Profiles.Self(role, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, "Profile not found")
		} else {
			utils.InternalServerError(c, "Failed to load profile")
		}
		return
	}
	utils.Success(c, "Profile fetched successfully", acct)
}
