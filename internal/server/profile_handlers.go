package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plateadmin/plateadmin/internal/models"
)

var (
	errNameRequired = errors.New("name is required")
	errEmailTaken   = errors.New("a user with this email already exists")
)

// ProfileRequest updates the signed-in user's own details. An empty Email
// keeps the current address.
type ProfileRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" form:"phone"`
	Location string `json:"location" form:"location"`
}

// saveProfile updates the user and returns a token carrying the new name
func (s *Server) saveProfile(userID string, req ProfileRequest) (*models.User, string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, "", errNameRequired
	}

	var user models.User
	if err := models.FindByID(s.db, userID, &user); err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		var taken int64
		if err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).
			Count(&taken).Error; err != nil {
			return nil, "", fmt.Errorf("failed to check email: %w", err)
		}
		if taken > 0 {
			return nil, "", errEmailTaken
		}
		user.Email = email
	}

	user.Name = name
	user.Phone = strings.TrimSpace(req.Phone)
	user.Location = strings.TrimSpace(req.Location)

	if err := s.db.Model(&user).Updates(map[string]any{
		"name":     user.Name,
		"email":    user.Email,
		"phone":    user.Phone,
		"location": user.Location,
	}).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update profile: %w", err)
	}

	token, err := issueToken(&user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return &user, token, nil
}

// @Router /api/profile [get]
func (s *Server) getProfile(c *gin.Context) {
	var user models.User
	if err := models.FindByID(s.db, GetSession(c).UserID, &user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to load profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, newUserDetail(&user))
}

// @Router /api/profile [put]
func (s *Server) updateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, token, err := s.saveProfile(GetSession(c).UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, errNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": "Name is required"})
			return
		case errors.Is(err, errEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserDetail(user)})
}
