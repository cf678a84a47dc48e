package services

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

// TestimonialService serves client testimonials
type TestimonialService struct {
	db *gorm.DB
}

// NewTestimonialService creates a new testimonial service
func NewTestimonialService(db *gorm.DB) *TestimonialService {
	return &TestimonialService{db: db}
}

// testimonialResponse renames the stored content column to "quote" for
// the public payload.
type testimonialResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Quote     string `json:"quote"`
	Rating    int    `json:"rating"`
	Photo     string `json:"photo,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func convertTestimonial(t *domain.Testimonial) *testimonialResponse {
	return &testimonialResponse{
		ID:        t.ID,
		Name:      t.Name,
		Role:      t.Role,
		Quote:     t.Content,
		Rating:    t.Rating,
		Photo:     t.Photo,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/testimonials. Only approved testimonials are
// returned.
func (s *TestimonialService) List(w http.ResponseWriter, r *http.Request) {
	var testimonials []domain.Testimonial
	err := s.db.WithContext(r.Context()).
		Where("approved = ?", true).
		Order("created_at DESC").
		Find(&testimonials).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	results := make([]*testimonialResponse, len(testimonials))
	for i := range testimonials {
		results[i] = convertTestimonial(&testimonials[i])
	}
	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
}

// ListAll handles GET /api/testimonials/all (admin), including
// unapproved entries.
func (s *TestimonialService) ListAll(w http.ResponseWriter, r *http.Request) {
	var testimonials []domain.Testimonial
	err := s.db.WithContext(r.Context()).
		Order("created_at DESC").
		Find(&testimonials).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    testimonials,
		"count":   len(testimonials),
	})
}

// Create handles POST /api/testimonials (admin)
func (s *TestimonialService) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Role     string `json:"role"`
		Quote    string `json:"quote"`
		Rating   *int   `json:"rating"`
		Photo    string `json:"photo"`
		Approved bool   `json:"approved"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	name := strings.TrimSpace(payload.Name)
	quote := strings.TrimSpace(payload.Quote)
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if quote == "" {
		missing = append(missing, "quote")
	}
	if len(missing) > 0 {
		WriteError(w, r, apperrors.Validation("missing required fields: "+strings.Join(missing, ", ")))
		return
	}

	testimonial := domain.Testimonial{
		Name:     name,
		Role:     strings.TrimSpace(payload.Role),
		Content:  quote,
		Photo:    payload.Photo,
		Approved: payload.Approved,
	}
	if payload.Rating != nil {
		if *payload.Rating < 1 || *payload.Rating > 5 {
			WriteError(w, r, apperrors.Validation("rating must be between 1 and 5"))
			return
		}
		testimonial.Rating = *payload.Rating
	}

	if err := s.db.WithContext(r.Context()).Create(&testimonial).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	WriteData(w, http.StatusCreated, convertTestimonial(&testimonial))
}

// Get handles GET /api/testimonials/{id} (admin). The raw record is
// returned so the approval state is visible alongside the content.
func (s *TestimonialService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var testimonial domain.Testimonial
	if err := s.db.WithContext(r.Context()).First(&testimonial, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	WriteData(w, http.StatusOK, testimonial)
}

// Update handles PUT /api/testimonials/{id} (admin). Only fields
// present in the payload change.
func (s *TestimonialService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var testimonial domain.Testimonial
	if err := s.db.WithContext(r.Context()).First(&testimonial, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	var payload struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		Quote    *string `json:"quote"`
		Rating   *int    `json:"rating"`
		Photo    *string `json:"photo"`
		Approved *bool   `json:"approved"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			WriteError(w, r, apperrors.Validation("name cannot be empty"))
			return
		}
		testimonial.Name = name
	}
	if payload.Role != nil {
		testimonial.Role = strings.TrimSpace(*payload.Role)
	}
	if payload.Quote != nil {
		quote := strings.TrimSpace(*payload.Quote)
		if quote == "" {
			WriteError(w, r, apperrors.Validation("quote cannot be empty"))
			return
		}
		testimonial.Content = quote
	}
	if payload.Rating != nil {
		if *payload.Rating < 1 || *payload.Rating > 5 {
			WriteError(w, r, apperrors.Validation("rating must be between 1 and 5"))
			return
		}
		testimonial.Rating = *payload.Rating
	}
	if payload.Photo != nil {
		testimonial.Photo = *payload.Photo
	}
	if payload.Approved != nil {
		testimonial.Approved = *payload.Approved
	}

	if err := s.db.WithContext(r.Context()).Save(&testimonial).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	WriteData(w, http.StatusOK, convertTestimonial(&testimonial))
}

// Approve handles PUT /api/testimonials/{id}/approve (admin)
func (s *TestimonialService) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var testimonial domain.Testimonial
	if err := s.db.WithContext(r.Context()).First(&testimonial, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	testimonial.Approved = true
	if err := s.db.WithContext(r.Context()).Save(&testimonial).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	WriteData(w, http.StatusOK, convertTestimonial(&testimonial))
}

// Delete handles DELETE /api/testimonials/{id} (admin)
func (s *TestimonialService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var testimonial domain.Testimonial
	if err := s.db.WithContext(r.Context()).First(&testimonial, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}
	if err := s.db.WithContext(r.Context()).Delete(&testimonial).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "testimonial"))
		return
	}

	WriteMessage(w, http.StatusOK, "Testimonial deleted")
}
