package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/auth"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/tasks"
)

// passwordResetTTL is how long a reset link stays usable
const passwordResetTTL = time.Hour

var (
	errInvalidEmail      = errors.New("Please enter a valid email address")
	errPasswordRequired  = errors.New("Please enter your password")
	errFieldsRequired    = errors.New("Please fill in all fields")
	errPasswordTooShort  = fmt.Errorf("Password must be at least %d characters", auth.MinPasswordLength)
	errPasswordsMismatch = errors.New("Passwords do not match")
	errInvalidResetToken = errors.New("Reset link is invalid or has expired")
	errBadCredentials    = errors.New("Invalid email or password")
)

// SetupRequest represents the first-run setup request
type SetupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserDetail `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN USER admin user"`
}

// ForgotPasswordRequest asks for a reset link
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// ResetPasswordRequest sets a new password using a reset token
type ResetPasswordRequest struct {
	Token           string `json:"token" form:"token"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func newUserDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		DisplayName: auth.DisplayName(user.Name, user.Email),
		Phone:       user.Phone,
		Location:    user.Location,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

func issueToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Email, user.Name, user.Role)
}

// validateLogin applies the login form rules
func validateLogin(req LoginRequest) error {
	if !strings.Contains(req.Email, "@") {
		return errInvalidEmail
	}
	if req.Password == "" {
		return errPasswordRequired
	}
	return nil
}

// validateReset applies the reset form rules
func validateReset(req ResetPasswordRequest) error {
	if req.Token == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return errFieldsRequired
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		return errPasswordTooShort
	}
	if req.NewPassword != req.ConfirmPassword {
		return errPasswordsMismatch
	}
	return nil
}

// authenticate checks credentials and returns the user with a fresh token
func (s *Server) authenticate(req LoginRequest) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errBadCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, "", errBadCredentials
	}

	token, err := issueToken(&user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return &user, token, nil
}

// @Router /api/setup [post]
func (s *Server) setupFirstAdmin(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check if any users exist
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Setup already completed"})
		return
	}

	// Generate JWT secret (64 hex characters = 32 bytes of randomness)
	jwtSecretBytes := make([]byte, 32)
	if _, err := rand.Read(jwtSecretBytes); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate JWT secret")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize system"})
		return
	}
	jwtSecret := hex.EncodeToString(jwtSecretBytes)

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         models.RoleAdmin,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// A seeded database may already carry a config row
		var config models.Config
		switch err := tx.First(&config).Error; {
		case err == nil:
			if err := tx.Model(&config).Update("jwt_secret", jwtSecret).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Config{JWTSecret: jwtSecret}).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return tx.Create(user).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize system")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize system"})
		return
	}

	auth.InitializeJWT(jwtSecret)

	token, err := issueToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("First admin user created")

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserDetail(user)})
}

// @Router /api/auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := validateLogin(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := s.authenticate(req)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserDetail(user)})
}

// @Router /api/auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	if session := GetSession(c); session != nil {
		s.logger.Info().Str("user_id", session.UserID).Msg("User logged out")
	}

	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// @Router /api/auth/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	session := GetSession(c)

	var user models.User
	if err := models.FindByID(s.db, session.UserID, &user); err != nil {
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	detail := newUserDetail(&user)
	// The token is what the gate sees, so report its role and name
	detail.Role = session.Role
	detail.DisplayName = session.DisplayName

	c.JSON(http.StatusOK, detail)
}

// requestPasswordReset stores a reset grant for email and queues the mail. An
// unknown email is not an error so the response never reveals which accounts exist.
func (s *Server) requestPasswordReset(email string) error {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info().Str("email", email).Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, tokenHash, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(passwordResetTTL),
	}
	if err := s.db.Create(reset).Error; err != nil {
		return fmt.Errorf("failed to store password reset: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.HTTP.BaseURL, token)
	task, err := tasks.NewPasswordResetMailTask(user.ID, user.Email, resetURL)
	if err != nil {
		return err
	}

	if _, err := s.tasks.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue password reset mail: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password reset link queued")
	return nil
}

// @Router /api/auth/forgot-password [post]
func (s *Server) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEmail.Error()})
		return
	}

	if err := s.requestPasswordReset(req.Email); err != nil {
		s.logger.Error().Err(err).Msg("Failed to request password reset")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset link sent to your email!"})
}

// applyPasswordReset consumes a reset token and sets the new password
func (s *Server) applyPasswordReset(req ResetPasswordRequest) error {
	if err := validateReset(req); err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		err := tx.Where("token_hash = ? AND used_at IS NULL", auth.HashResetToken(req.Token)).First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidResetToken
		}
		if err != nil {
			return fmt.Errorf("failed to find password reset: %w", err)
		}

		now := time.Now()
		if now.After(reset.ExpiresAt) {
			return errInvalidResetToken
		}

		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", passwordHash).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		if err := tx.Model(&reset).Update("used_at", now).Error; err != nil {
			return fmt.Errorf("failed to mark password reset used: %w", err)
		}

		return nil
	})
}

// isResetInputError reports whether err is the caller's fault
func isResetInputError(err error) bool {
	for _, target := range []error{errFieldsRequired, errPasswordTooShort, errPasswordsMismatch, errInvalidResetToken} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// @Router /api/auth/reset-password [post]
func (s *Server) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := s.applyPasswordReset(req); err != nil {
		if isResetInputError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to reset password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully!"})
}

// @Router /api/users [get]
func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	userDetails := make([]*UserDetail, len(users))
	for i := range users {
		userDetails[i] = newUserDetail(&users[i])
	}

	c.JSON(http.StatusOK, userDetails)
}

// @Router /api/users [post]
func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(req.Email)).Count(&existing).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check existing user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("role", user.Role).
		Str("created_by", GetSession(c).UserID).
		Msg("User created")

	c.JSON(http.StatusCreated, gin.H{"user": newUserDetail(user)})
}

// @Router /api/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	userID := c.Param("id")
	session := GetSession(c)

	if userID == session.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var user models.User
	if err := models.FindByID(s.db, userID, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Delete(&user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("deleted_by", session.UserID).
		Msg("User deleted")

	c.Status(http.StatusNoContent)
}
