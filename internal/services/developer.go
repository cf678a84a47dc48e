package services

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

// DeveloperService serves real-estate developer profiles
type DeveloperService struct {
	db *gorm.DB
}

// NewDeveloperService creates a new developer service
func NewDeveloperService(db *gorm.DB) *DeveloperService {
	return &DeveloperService{db: db}
}

// List handles GET /api/developers
func (s *DeveloperService) List(w http.ResponseWriter, r *http.Request) {
	var developers []domain.Developer
	if err := s.db.WithContext(r.Context()).Order("name ASC").Find(&developers).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "developer"))
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    developers,
		"count":   len(developers),
	})
}

// GetBySlug handles GET /api/developers/{slug}. The developer is
// returned together with its published properties.
func (s *DeveloperService) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var developer domain.Developer
	if err := s.db.WithContext(r.Context()).Where("slug = ?", slug).First(&developer).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "developer"))
		return
	}

	var properties []domain.Property
	err := s.db.WithContext(r.Context()).
		Where("developer_id = ? AND is_published = ?", developer.ID, true).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	WriteData(w, http.StatusOK, Envelope{
		"developer":  developer,
		"properties": properties,
	})
}

// Create handles POST /api/developers (admin)
func (s *DeveloperService) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Logo        string `json:"logo"`
		Featured    bool   `json:"featured"`
	}
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		WriteError(w, r, apperrors.Validation("missing required fields: name"))
		return
	}

	developer := domain.Developer{
		Name:        name,
		Slug:        util.Slugify(name),
		Description: payload.Description,
		Logo:        payload.Logo,
		Featured:    payload.Featured,
	}
	if err := s.db.WithContext(r.Context()).Create(&developer).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "developer"))
		return
	}

	WriteData(w, http.StatusCreated, developer)
}

// Update handles PUT /api/developers/{id} (admin)
func (s *DeveloperService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var developer domain.Developer
	if err := s.db.WithContext(r.Context()).First(&developer, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "developer"))
		return
	}

	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Logo        *string `json:"logo"`
		Featured    *bool   `json:"featured"`
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
		developer.Name = name
		developer.Slug = util.Slugify(name)
	}
	if payload.Description != nil {
		developer.Description = *payload.Description
	}
	if payload.Logo != nil {
		developer.Logo = *payload.Logo
	}
	if payload.Featured != nil {
		developer.Featured = *payload.Featured
	}

	if err := s.db.WithContext(r.Context()).Save(&developer).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "developer"))
		return
	}

	WriteData(w, http.StatusOK, developer)
}
