package services

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

const resetTokenValidity = time.Hour

// UserService implements registration, login and account endpoints
type UserService struct {
	db           *gorm.DB
	emailService *EmailService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, emailService *EmailService) *UserService {
	return &UserService{db: db, emailService: emailService}
}

// userResponse is the public user shape. The single stored name is
// split into first/last here, at the presentation boundary.
type userResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"isActive"`
	CreatedAt string  `json:"createdAt"`
}

func convertUser(user *domain.User) *userResponse {
	first, last := user.SplitName()
	return &userResponse{
		ID:        user.ID,
		Name:      user.Name,
		FirstName: first,
		LastName:  last,
		Email:     user.Email,
		Phone:     user.Phone,
		Avatar:    user.Avatar,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles POST /api/users
func (s *UserService) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Phone    *string `json:"phone"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	name := strings.TrimSpace(payload.Name)
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	password := strings.TrimSpace(payload.Password)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		WriteError(w, r, apperrors.Validation("missing required fields: "+strings.Join(missing, ", ")))
		return
	}
	if !emailRegex.MatchString(email) {
		WriteError(w, r, apperrors.Validation("invalid email address"))
		return
	}
	if len(password) < 8 {
		WriteError(w, r, apperrors.Validation("password must be at least 8 characters"))
		return
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to hash password: %w", err))
		return
	}

	user := domain.User{
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Phone:          payload.Phone,
		Role:           domain.RoleUser,
		IsActive:       true,
	}
	if err := s.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "user"))
		return
	}

	log.Printf("[AUTH] Registered user id=%d email=%s", user.ID, user.Email)

	token, err := util.GenerateToken(&user)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to generate token: %w", err))
		return
	}

	WriteJSON(w, http.StatusCreated, Envelope{
		"success": true,
		"data":    convertUser(&user),
		"token":   token,
	})
}

// Login handles POST /api/users/login
func (s *UserService) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	password := strings.TrimSpace(payload.Password)
	log.Printf("[AUTH] Login attempt for %s", email)

	var user domain.User
	if err := s.db.WithContext(r.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordAuthAttempt(false)
			WriteError(w, r, apperrors.Unauthorized("incorrect email or password"))
			return
		}
		WriteError(w, r, apperrors.FromDB(err, "user"))
		return
	}

	if !util.CheckPasswordHash(password, user.HashedPassword) {
		log.Printf("[AUTH] Login failed: invalid password for %s", email)
		metrics.RecordAuthAttempt(false)
		WriteError(w, r, apperrors.Unauthorized("incorrect email or password"))
		return
	}
	if !user.IsActive {
		log.Printf("[AUTH] Login failed: account %s is inactive", email)
		metrics.RecordAuthAttempt(false)
		WriteError(w, r, apperrors.Unauthorized("user account is inactive"))
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(r.Context()).Save(&user).Error; err != nil {
		log.Printf("[AUTH] Failed to record last login for %s: %v", email, err)
	}

	token, err := util.GenerateToken(&user)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to generate token: %w", err))
		return
	}

	log.Printf("[AUTH] Login successful for %s (id=%d, role=%s)", email, user.ID, user.Role)
	metrics.RecordAuthAttempt(true)

	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    convertUser(&user),
		"token":   token,
	})
}

// Me handles GET /api/users/me
func (s *UserService) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, r, apperrors.Unauthorized("authentication required"))
		return
	}
	WriteData(w, http.StatusOK, convertUser(user))
}

// List handles GET /api/users (admin)
func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	var users []domain.User
	if err := s.db.WithContext(r.Context()).Order("created_at DESC").Limit(500).Find(&users).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "user"))
		return
	}

	results := make([]*userResponse, len(users))
	for i := range users {
		results[i] = convertUser(&users[i])
	}
	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
}

// ForgotPassword handles POST /api/users/forgot-password. The response
// is identical whether or not the email exists.
func (s *UserService) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		WriteError(w, r, apperrors.Validation("missing required fields: email"))
		return
	}

	const reply = "If that email is registered, a reset link has been sent."

	var user domain.User
	if err := s.db.WithContext(r.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		WriteMessage(w, http.StatusOK, reply)
		return
	}

	token := uuid.NewString()
	expiry := time.Now().Add(resetTokenValidity)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	if err := s.db.WithContext(r.Context()).Save(&user).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "user"))
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", config.Get().App.BaseURL, token)
	go func() {
		if err := s.emailService.SendPasswordReset(user.Email, resetURL); err != nil {
			log.Printf("[AUTH] Warning: failed to send reset email: %v", err)
		}
	}()

	WriteMessage(w, http.StatusOK, reply)
}

// ResetPassword handles POST /api/users/reset-password/{token}
func (s *UserService) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var payload struct {
		Password string `json:"password"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	password := strings.TrimSpace(payload.Password)
	if len(password) < 8 {
		WriteError(w, r, apperrors.Validation("password must be at least 8 characters"))
		return
	}

	var user domain.User
	err := s.db.WithContext(r.Context()).Where("reset_token = ?", token).First(&user).Error
	if err != nil || user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		WriteError(w, r, apperrors.Unauthorized("invalid or expired reset token"))
		return
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to hash password: %w", err))
		return
	}

	user.HashedPassword = hashedPassword
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.db.WithContext(r.Context()).Save(&user).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "user"))
		return
	}

	log.Printf("[AUTH] Password reset for user id=%d", user.ID)
	WriteMessage(w, http.StatusOK, "Password has been reset. You can now log in.")
}
