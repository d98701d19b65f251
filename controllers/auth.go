package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserStore is what the auth handlers need from user storage.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, passwordHash string) error
}

// AuthSettings holds the session parameters shared by the handlers.
type AuthSettings struct {
	Secret       string
	Expiry       time.Duration
	CookieSecure bool
	AdminEmails  []string
}

type AuthController struct {
	users    UserStore
	settings AuthSettings
	log      *logrus.Logger
}

func NewAuthController(users UserStore, settings AuthSettings, log *logrus.Logger) *AuthController {
	return &AuthController{users: users, settings: settings, log: log}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := models.RoleMember
	for _, admin := range ac.settings.AdminEmails {
		if admin == email {
			role = models.RoleAdmin
			break
		}
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     strings.TrimSpace(input.Name),
		Password: input.Password, // hashed in BeforeCreate
		Role:     role,
		IsActive: true,
	}
	if err := ac.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			utils.RespondWithError(c, http.StatusConflict, "Email already registered")
			return
		}
		ac.log.WithError(err).Error("failed to create user")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, ok := ac.issueSession(c, user)
	if !ok {
		return
	}

	ac.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    user.Identity(),
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := ac.users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		ac.log.WithError(err).Error("failed to look up user")
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, ok := ac.issueSession(c, *user)
	if !ok {
		return
	}

	if err := ac.users.TouchLastLogin(c.Request.Context(), user.ID, time.Now()); err != nil {
		ac.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.Identity(),
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", ac.settings.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}

	user, err := ac.users.FindByID(c.Request.Context(), current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}
		ac.log.WithError(err).Error("failed to load current user")
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":      user.ID,
			"email":   user.Email,
			"name":    user.Name,
			"isAdmin": user.IsAdmin(),
		},
	})
}

// issueSession signs a token and sets it as an httpOnly cookie. It writes
// the error response itself and reports false on failure.
func (ac *AuthController) issueSession(c *gin.Context, user models.User) (string, bool) {
	token, err := utils.GenerateToken(user.ID.String(), user.Email, user.IsAdmin(), ac.settings.Secret, ac.settings.Expiry)
	if err != nil {
		ac.log.WithError(err).Error("failed to generate token")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.TokenCookie,
		token,
		int(ac.settings.Expiry.Seconds()),
		"/",
		"",
		ac.settings.CookieSecure,
		true,
	)
	return token, true
}
