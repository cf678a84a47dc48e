package services

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/cache"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
	"github.com/neuralblades/platinum-V1-sub000/internal/search"
	"github.com/neuralblades/platinum-V1-sub000/internal/storage"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

const propertyCachePrefix = "properties"

// PropertyService implements the property listing endpoints
type PropertyService struct {
	db               *gorm.DB
	cache            cache.Store
	storage          storage.Storage
	placeholderImage string
}

// NewPropertyService creates a new property service
func NewPropertyService(db *gorm.DB, store cache.Store, uploads storage.Storage, placeholderImage string) *PropertyService {
	return &PropertyService{
		db:               db,
		cache:            store,
		storage:          uploads,
		placeholderImage: placeholderImage,
	}
}

// List handles GET /api/properties
func (s *PropertyService) List(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, nil)
}

// Offplan handles GET /api/properties/offplan
func (s *PropertyService) Offplan(w http.ResponseWriter, r *http.Request) {
	offplan := true
	s.list(w, r, &offplan)
}

func (s *PropertyService) list(w http.ResponseWriter, r *http.Request, forceOffplan *bool) {
	filter, err := search.ParsePropertyFilter(r.URL.Query())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if forceOffplan != nil {
		filter.Offplan = forceOffplan
	}

	key := cache.Key(propertyCachePrefix, filter.CacheKeyParts()...)
	if s.cache != nil {
		if body, ok := s.cache.Get(key, cache.ListingTTL); ok {
			metrics.RecordCacheLookup("properties", true)
			WriteCached(w, body)
			return
		}
		metrics.RecordCacheLookup("properties", false)
	}

	properties, pagination, err := filter.Run(r.Context(), s.db)
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}
	properties = search.Enrich(r.Context(), s.db, properties)

	body, err := MarshalEnvelope(Envelope{
		"success":    true,
		"data":       properties,
		"pagination": pagination,
		"filters":    filter.EchoFilters(),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if s.cache != nil {
		s.cache.Set(key, body)
	}
	WriteRawJSON(w, http.StatusOK, body)
}

// Featured handles GET /api/properties/featured
func (s *PropertyService) Featured(w http.ResponseWriter, r *http.Request) {
	limit := 6
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, r, apperrors.Validation("invalid value for parameter 'limit'"))
			return
		}
		if n > 0 && n <= search.MaxLimit {
			limit = n
		}
	}

	key := cache.Key(propertyCachePrefix, "featured", strconv.Itoa(limit))
	if s.cache != nil {
		if body, ok := s.cache.Get(key, cache.FeaturedTTL); ok {
			metrics.RecordCacheLookup("properties_featured", true)
			WriteCached(w, body)
			return
		}
		metrics.RecordCacheLookup("properties_featured", false)
	}

	var properties []domain.Property
	err := s.db.WithContext(r.Context()).
		Where("featured = ? AND is_published = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&properties).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}
	properties = search.Enrich(r.Context(), s.db, properties)

	body, err := MarshalEnvelope(Envelope{
		"success": true,
		"data":    properties,
		"count":   len(properties),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if s.cache != nil {
		s.cache.Set(key, body)
	}
	WriteRawJSON(w, http.StatusOK, body)
}

// Get handles GET /api/properties/{id}
func (s *PropertyService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var property domain.Property
	if err := s.db.WithContext(r.Context()).First(&property, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	WriteData(w, http.StatusOK, search.EnrichOne(r.Context(), s.db, &property))
}

// Create handles POST /api/properties (multipart form with image files)
func (s *PropertyService) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteError(w, r, apperrors.Wrap(apperrors.ErrCodeValidation, "invalid multipart form", err))
		return
	}

	property, err := propertyFromForm(r.MultipartForm.Value)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	// Upload images first; clean them up if the insert fails so a
	// failed create leaves nothing behind.
	var stored []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			urlPath, err := s.saveUpload(header)
			if err != nil {
				s.removeUploads(stored)
				WriteError(w, r, err)
				return
			}
			stored = append(stored, urlPath)
		}
	}
	property.Images = stored
	if len(stored) > 0 {
		property.MainImage = stored[0]
	} else {
		property.MainImage = s.placeholderImage
	}

	if err := s.db.WithContext(r.Context()).Create(property).Error; err != nil {
		s.removeUploads(stored)
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	log.Printf("[PROPERTY] Created property id=%d title=%q offplan=%v", property.ID, property.Title, property.IsOffplan)
	s.invalidate()

	WriteData(w, http.StatusCreated, search.EnrichOne(r.Context(), s.db, property))
}

// Update handles PUT /api/properties/{id}
func (s *PropertyService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var property domain.Property
	if err := s.db.WithContext(r.Context()).First(&property, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	var payload propertyUpdatePayload
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	payload.apply(&property)

	if property.MainImage == "" {
		property.MainImage = s.placeholderImage
	}

	if err := s.db.WithContext(r.Context()).Save(&property).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	log.Printf("[PROPERTY] Updated property id=%d", property.ID)
	s.invalidate()

	WriteData(w, http.StatusOK, search.EnrichOne(r.Context(), s.db, &property))
}

// Delete handles DELETE /api/properties/{id}. Properties referenced by
// inquiries cannot be deleted.
func (s *PropertyService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var property domain.Property
	if err := s.db.WithContext(r.Context()).First(&property, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	var inquiryCount int64
	if err := s.db.WithContext(r.Context()).Model(&domain.Inquiry{}).Where("property_id = ?", id).Count(&inquiryCount).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}
	var offplanCount int64
	if err := s.db.WithContext(r.Context()).Model(&domain.OffplanInquiry{}).Where("property_id = ?", id).Count(&offplanCount).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}
	if inquiryCount+offplanCount > 0 {
		WriteError(w, r, apperrors.Conflict("this property cannot be deleted because inquiries reference it"))
		return
	}

	if err := s.db.WithContext(r.Context()).Delete(&property).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "property"))
		return
	}

	log.Printf("[PROPERTY] Deleted property id=%d", id)
	s.invalidate()

	WriteMessage(w, http.StatusOK, "Property deleted")
}

// invalidate drops every cached property listing after a write.
func (s *PropertyService) invalidate() {
	if s.cache != nil {
		s.cache.DeletePrefix(propertyCachePrefix)
	}
}

func (s *PropertyService) saveUpload(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeValidation, "failed to read uploaded image", err)
	}
	defer file.Close()
	urlPath, err := s.storage.Save(file, header.Filename)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to store uploaded image", err)
	}
	return urlPath, nil
}

func (s *PropertyService) removeUploads(urlPaths []string) {
	for _, p := range urlPaths {
		if err := s.storage.Remove(p); err != nil {
			log.Printf("[PROPERTY] Warning: failed to clean up upload %s: %v", p, err)
		}
	}
}

// propertyFromForm validates the multipart form fields and builds a
// Property. Missing required fields are reported together.
func propertyFromForm(values url.Values) (*domain.Property, error) {
	var missing []string
	for _, field := range []string{"title", "price", "type"} {
		if strings.TrimSpace(values.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("missing required fields: " + strings.Join(missing, ", "))
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(values.Get("price")), 64)
	if err != nil || price < 0 {
		return nil, apperrors.Validation("invalid value for field 'price'")
	}

	property := &domain.Property{
		Title:        strings.TrimSpace(values.Get("title")),
		Description:  strings.TrimSpace(values.Get("description")),
		Price:        price,
		Location:     strings.TrimSpace(values.Get("location")),
		Address:      strings.TrimSpace(values.Get("address")),
		City:         strings.TrimSpace(values.Get("city")),
		PropertyType: strings.TrimSpace(values.Get("type")),
		Status:       strings.TrimSpace(values.Get("status")),
		PaymentPlan:  strings.TrimSpace(values.Get("paymentPlan")),
		IsPublished:  true,
	}

	if raw := values.Get("isOffplan"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.Validation("invalid value for field 'isOffplan'")
		}
		property.IsOffplan = v
	}
	if raw := values.Get("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.Validation("invalid value for field 'featured'")
		}
		property.Featured = v
	}

	intFields := []struct {
		name string
		dst  *int
	}{
		{"bedrooms", &property.Bedrooms},
		{"bathrooms", &property.Bathrooms},
		{"yearBuilt", &property.YearBuilt},
		{"handoverYear", &property.HandoverYear},
	}
	for _, f := range intFields {
		if raw := strings.TrimSpace(values.Get(f.name)); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, apperrors.Validation(fmt.Sprintf("invalid value for field '%s'", f.name))
			}
			*f.dst = v
		}
	}

	if raw := strings.TrimSpace(values.Get("area")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.Validation("invalid value for field 'area'")
		}
		property.Area = v
	}

	if raw := strings.TrimSpace(values.Get("features")); raw != "" {
		for _, feature := range strings.Split(raw, ",") {
			if f := strings.TrimSpace(feature); f != "" {
				property.Features = append(property.Features, f)
			}
		}
	}

	for _, ref := range []struct {
		name string
		dst  **uint
	}{
		{"developerId", &property.DeveloperID},
		{"agentId", &property.AgentID},
	} {
		if raw := strings.TrimSpace(values.Get(ref.name)); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return nil, apperrors.Validation(fmt.Sprintf("invalid value for field '%s'", ref.name))
			}
			id := uint(v)
			*ref.dst = &id
		}
	}

	return property, nil
}

// propertyUpdatePayload carries optional fields for partial updates.
type propertyUpdatePayload struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Price        *float64  `json:"price"`
	Location     *string   `json:"location"`
	Address      *string   `json:"address"`
	City         *string   `json:"city"`
	PropertyType *string   `json:"propertyType"`
	Status       *string   `json:"status"`
	IsOffplan    *bool     `json:"isOffplan"`
	Bedrooms     *int      `json:"bedrooms"`
	Bathrooms    *int      `json:"bathrooms"`
	Area         *float64  `json:"area"`
	YearBuilt    *int      `json:"yearBuilt"`
	MainImage    *string   `json:"mainImage"`
	Images       *[]string `json:"images"`
	Features     *[]string `json:"features"`
	Featured     *bool     `json:"featured"`
	IsPublished  *bool     `json:"isPublished"`
	PaymentPlan  *string   `json:"paymentPlan"`
	HandoverYear *int      `json:"handoverYear"`
	DeveloperID  *uint     `json:"developerId"`
	AgentID      *uint     `json:"agentId"`
}

func (p *propertyUpdatePayload) apply(property *domain.Property) {
	if p.Title != nil {
		property.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		property.Description = *p.Description
	}
	if p.Price != nil {
		property.Price = *p.Price
	}
	if p.Location != nil {
		property.Location = *p.Location
	}
	if p.Address != nil {
		property.Address = *p.Address
	}
	if p.City != nil {
		property.City = *p.City
	}
	if p.PropertyType != nil {
		property.PropertyType = *p.PropertyType
	}
	if p.Status != nil {
		property.Status = *p.Status
	}
	if p.IsOffplan != nil {
		property.IsOffplan = *p.IsOffplan
	}
	if p.Bedrooms != nil {
		property.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		property.Bathrooms = *p.Bathrooms
	}
	if p.Area != nil {
		property.Area = *p.Area
	}
	if p.YearBuilt != nil {
		property.YearBuilt = *p.YearBuilt
	}
	if p.MainImage != nil {
		property.MainImage = *p.MainImage
	}
	if p.Images != nil {
		property.Images = *p.Images
	}
	if p.Features != nil {
		property.Features = *p.Features
	}
	if p.Featured != nil {
		property.Featured = *p.Featured
	}
	if p.IsPublished != nil {
		property.IsPublished = *p.IsPublished
	}
	if p.PaymentPlan != nil {
		property.PaymentPlan = *p.PaymentPlan
	}
	if p.HandoverYear != nil {
		property.HandoverYear = *p.HandoverYear
	}
	if p.DeveloperID != nil {
		property.DeveloperID = p.DeveloperID
	}
	if p.AgentID != nil {
		property.AgentID = p.AgentID
	}
}

func parseIDParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid id parameter")
	}
	return uint(id), nil
}
