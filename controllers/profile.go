package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UpdateProfileInput struct {
	Name            *string `json:"name"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword" binding:"omitempty,min=8"`
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	user, err := ac.users.FindByID(c.Request.Context(), current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		ac.log.WithError(err).Error("failed to load profile")
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"role":      user.Role,
		"lastLogin": user.LastLogin,
		"createdAt": user.CreatedAt,
	})
}

// UpdateProfile changes the display name and, when currentPassword
// matches, the password. Email and role are not editable here.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := ac.users.FindByID(c.Request.Context(), current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		ac.log.WithError(err).Error("failed to load profile")
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	name := user.Name
	if input.Name != nil {
		if name = strings.TrimSpace(*input.Name); name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
	}

	var passwordHash string
	if input.NewPassword != "" {
		if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		if passwordHash, err = utils.HashPassword(input.NewPassword); err != nil {
			ac.log.WithError(err).Error("failed to hash password")
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	if err := ac.users.UpdateProfile(c.Request.Context(), user.ID, name, passwordHash); err != nil {
		ac.log.WithError(err).WithField("user_id", user.ID).Error("failed to update profile")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	ac.log.WithFields(logrus.Fields{
		"user_id":          user.ID,
		"password_changed": passwordHash != "",
	}).Info("profile updated")
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
