package services

import (
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

// ContactService handles general contact form submissions
type ContactService struct {
	db           *gorm.DB
	emailService *EmailService
}

// NewContactService creates a new contact service
func NewContactService(db *gorm.DB, emailService *EmailService) *ContactService {
	return &ContactService{db: db, emailService: emailService}
}

// Create handles POST /api/contact
func (s *ContactService) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string  `json:"name"`
		Email   string  `json:"email"`
		Phone   *string `json:"phone"`
		Subject string  `json:"subject"`
		Message string  `json:"message"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	name := strings.TrimSpace(payload.Name)
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	body := strings.TrimSpace(payload.Message)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if body == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		WriteError(w, r, apperrors.Validation("missing required fields: "+strings.Join(missing, ", ")))
		return
	}
	if !emailRegex.MatchString(email) {
		WriteError(w, r, apperrors.Validation("invalid email address"))
		return
	}

	message := domain.Message{
		Name:    name,
		Email:   email,
		Phone:   payload.Phone,
		Subject: strings.TrimSpace(payload.Subject),
		Message: body,
	}
	if err := s.db.WithContext(r.Context()).Create(&message).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "message"))
		return
	}

	log.Printf("[CONTACT] New message id=%d from %s", message.ID, message.Email)
	metrics.RecordContactSubmission()

	go func() {
		if err := s.emailService.NotifyMessage(&message); err != nil {
			log.Printf("[CONTACT] Warning: failed to send notification email: %v", err)
		}
	}()

	WriteJSON(w, http.StatusCreated, Envelope{
		"success": true,
		"message": "Thank you for contacting us. We will get back to you shortly.",
	})
}

// List handles GET /api/contact (admin). Supports ?read=true|false.
func (s *ContactService) List(w http.ResponseWriter, r *http.Request) {
	q := s.db.WithContext(r.Context()).Model(&domain.Message{})

	if raw := strings.TrimSpace(r.URL.Query().Get("read")); raw != "" {
		switch raw {
		case "true":
			q = q.Where("read = ?", true)
		case "false":
			q = q.Where("read = ?", false)
		default:
			WriteError(w, r, apperrors.Validation("invalid value for parameter 'read'"))
			return
		}
	}

	var messages []domain.Message
	if err := q.Order("created_at DESC").Limit(500).Find(&messages).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "message"))
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    messages,
		"count":   len(messages),
	})
}

// MarkRead handles PUT /api/contact/{id}/read (admin)
func (s *ContactService) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var message domain.Message
	if err := s.db.WithContext(r.Context()).First(&message, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "message"))
		return
	}

	message.Read = true
	if err := s.db.WithContext(r.Context()).Save(&message).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "message"))
		return
	}

	WriteData(w, http.StatusOK, message)
}
