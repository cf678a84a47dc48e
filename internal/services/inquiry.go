package services

import (
	"log"
	"net/http"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var inquiryStatuses = map[string]bool{
	domain.InquiryStatusNew:        true,
	domain.InquiryStatusInProgress: true,
	domain.InquiryStatusResolved:   true,
}

// InquiryService implements property and off-plan inquiry endpoints
type InquiryService struct {
	db           *gorm.DB
	emailService *EmailService
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(db *gorm.DB, emailService *EmailService) *InquiryService {
	return &InquiryService{db: db, emailService: emailService}
}

type inquiryPayload struct {
	PropertyID uint    `json:"propertyId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	Message    string  `json:"message"`

	// Off-plan extras
	PreferredLanguage    string `json:"preferredLanguage"`
	InterestedInMortgage bool   `json:"interestedInMortgage"`
}

func (p *inquiryPayload) validate(requireMessage bool) error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "email")
	}
	if requireMessage && strings.TrimSpace(p.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing required fields: " + strings.Join(missing, ", "))
	}
	if !emailRegex.MatchString(strings.TrimSpace(p.Email)) {
		return apperrors.Validation("invalid email address")
	}
	if len(p.Message) > 5000 {
		return apperrors.Validation("message must not exceed 5000 characters")
	}
	return nil
}

// Create handles POST /api/properties/{id}/inquiries
func (s *InquiryService) Create(w http.ResponseWriter, r *http.Request) {
	propertyID, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var payload inquiryPayload
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := payload.validate(true); err != nil {
		WriteError(w, r, err)
		return
	}

	var property domain.Property
	if err := s.db.WithContext(r.Context()).First(&property, propertyID).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	inquiry := &domain.Inquiry{
		PropertyID: propertyID,
		Name:       strings.TrimSpace(payload.Name),
		Email:      strings.ToLower(strings.TrimSpace(payload.Email)),
		Message:    strings.TrimSpace(payload.Message),
	}
	if payload.Phone != nil && strings.TrimSpace(*payload.Phone) != "" {
		phone := strings.TrimSpace(*payload.Phone)
		inquiry.Phone = &phone
	}
	// A logged-in submitter gets linked; anonymous submissions are fine.
	if user := optionalUser(s.db, r); user != nil {
		inquiry.UserID = &user.ID
	}

	if err := s.db.WithContext(r.Context()).Create(inquiry).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "inquiry"))
		return
	}

	log.Printf("[INQUIRY] Created inquiry id=%d property=%d email=%s", inquiry.ID, propertyID, inquiry.Email)
	metrics.RecordInquiry("property")

	go func() {
		if err := s.emailService.NotifyInquiry(inquiry, &property); err != nil {
			log.Printf("[INQUIRY] Warning: failed to send notification email: %v", err)
		}
	}()

	WriteJSON(w, http.StatusCreated, Envelope{
		"success": true,
		"data":    inquiry,
		"message": "Thank you for your inquiry! Our team will contact you shortly.",
	})
}

// CreateOffplan handles POST /api/inquiries/offplan
func (s *InquiryService) CreateOffplan(w http.ResponseWriter, r *http.Request) {
	var payload inquiryPayload
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	if payload.PropertyID == 0 {
		WriteError(w, r, apperrors.Validation("missing required fields: propertyId"))
		return
	}
	if err := payload.validate(false); err != nil {
		WriteError(w, r, err)
		return
	}

	var property domain.Property
	if err := s.db.WithContext(r.Context()).First(&property, payload.PropertyID).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}
	if !property.IsOffplan {
		WriteError(w, r, apperrors.Validation("property is not an off-plan listing"))
		return
	}

	inquiry := &domain.OffplanInquiry{
		PropertyID:           payload.PropertyID,
		Name:                 strings.TrimSpace(payload.Name),
		Email:                strings.ToLower(strings.TrimSpace(payload.Email)),
		Message:              strings.TrimSpace(payload.Message),
		PreferredLanguage:    strings.ToLower(strings.TrimSpace(payload.PreferredLanguage)),
		InterestedInMortgage: payload.InterestedInMortgage,
	}
	if payload.Phone != nil && strings.TrimSpace(*payload.Phone) != "" {
		phone := strings.TrimSpace(*payload.Phone)
		inquiry.Phone = &phone
	}

	if err := s.db.WithContext(r.Context()).Create(inquiry).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "inquiry"))
		return
	}

	log.Printf("[INQUIRY] Created off-plan inquiry id=%d property=%d email=%s mortgage=%v",
		inquiry.ID, inquiry.PropertyID, inquiry.Email, inquiry.InterestedInMortgage)
	metrics.RecordInquiry("offplan")

	WriteJSON(w, http.StatusCreated, Envelope{
		"success": true,
		"data":    inquiry,
		"message": "Thank you for your interest! Our off-plan specialists will contact you shortly.",
	})
}

// List handles GET /api/inquiries (admin)
func (s *InquiryService) List(w http.ResponseWriter, r *http.Request) {
	q := s.db.WithContext(r.Context()).Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var inquiries []domain.Inquiry
	if err := q.Limit(500).Find(&inquiries).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "inquiry"))
		return
	}

	s.attachProperties(r, inquiries)
	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    inquiries,
		"count":   len(inquiries),
	})
}

// ListOffplan handles GET /api/inquiries/offplan (admin)
func (s *InquiryService) ListOffplan(w http.ResponseWriter, r *http.Request) {
	q := s.db.WithContext(r.Context()).Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var inquiries []domain.OffplanInquiry
	if err := q.Limit(500).Find(&inquiries).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "inquiry"))
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    inquiries,
		"count":   len(inquiries),
	})
}

// UpdateStatus handles PUT /api/inquiries/{id}/status (admin)
func (s *InquiryService) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	if !inquiryStatuses[payload.Status] {
		WriteError(w, r, apperrors.Validation("status must be one of: new, in-progress, resolved"))
		return
	}

	var inquiry domain.Inquiry
	if err := s.db.WithContext(r.Context()).First(&inquiry, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "inquiry"))
		return
	}

	inquiry.Status = payload.Status
	if err := s.db.WithContext(r.Context()).Save(&inquiry).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "inquiry"))
		return
	}

	log.Printf("[INQUIRY] Updated inquiry id=%d status=%s", inquiry.ID, inquiry.Status)
	WriteData(w, http.StatusOK, inquiry)
}

// attachProperties batch-loads the referenced properties for an admin
// inquiry listing, same pattern as the search enricher.
func (s *InquiryService) attachProperties(r *http.Request, inquiries []domain.Inquiry) {
	if len(inquiries) == 0 {
		return
	}
	seen := make(map[uint]bool)
	var ids []uint
	for i := range inquiries {
		if !seen[inquiries[i].PropertyID] {
			seen[inquiries[i].PropertyID] = true
			ids = append(ids, inquiries[i].PropertyID)
		}
	}

	var properties []domain.Property
	if err := s.db.WithContext(r.Context()).Where("id IN ?", ids).Find(&properties).Error; err != nil {
		log.Printf("[INQUIRY] property batch fetch failed, degrading to nil: %v", err)
		return
	}
	byID := make(map[uint]*domain.Property, len(properties))
	for i := range properties {
		byID[properties[i].ID] = &properties[i]
	}
	for i := range inquiries {
		inquiries[i].Property = byID[inquiries[i].PropertyID]
	}
}

// optionalUser resolves the bearer token when one is present. Invalid
// or absent tokens just mean an anonymous submission.
func optionalUser(db *gorm.DB, r *http.Request) *domain.User {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}
	claims, err := util.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	user, err := util.GetUserFromToken(db, claims)
	if err != nil {
		return nil
	}
	return user
}
