package services

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/cache"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

// TeamService serves agency team member profiles
type TeamService struct {
	db    *gorm.DB
	cache cache.Store
}

// NewTeamService creates a new team service
func NewTeamService(db *gorm.DB, cacheStore cache.Store) *TeamService {
	return &TeamService{db: db, cache: cacheStore}
}

// teamMemberResponse renames the stored position column to "role" for
// the public payload.
type teamMemberResponse struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	Role      string            `json:"role"`
	Photo     string            `json:"photo,omitempty"`
	Email     *string           `json:"email,omitempty"`
	Phone     *string           `json:"phone,omitempty"`
	Languages domain.StringList `json:"languages"`
	Order     int               `json:"order"`
}

func convertTeamMember(m *domain.TeamMember) *teamMemberResponse {
	languages := m.Languages
	if languages == nil {
		languages = domain.StringList{}
	}
	return &teamMemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Position,
		Photo:     m.Photo,
		Email:     m.Email,
		Phone:     m.Phone,
		Languages: languages,
		Order:     m.Order,
	}
}

const teamCacheKey = "team|active"

// List handles GET /api/team. Active members only, sorted by display
// order, cached for the long TTL since the roster changes rarely.
func (s *TeamService) List(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if body, ok := s.cache.Get(teamCacheKey, cache.TeamTTL); ok {
			metrics.RecordCacheLookup("team", true)
			WriteCached(w, body)
			return
		}
		metrics.RecordCacheLookup("team", false)
	}

	var members []domain.TeamMember
	err := s.db.WithContext(r.Context()).
		Where("is_active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&members).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}

	results := make([]*teamMemberResponse, len(members))
	for i := range members {
		results[i] = convertTeamMember(&members[i])
	}

	body, err := MarshalEnvelope(Envelope{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if s.cache != nil {
		s.cache.Set(teamCacheKey, body)
	}
	WriteRawJSON(w, http.StatusOK, body)
}

// ListAll handles GET /api/team/all (admin), including inactive
// members.
func (s *TeamService) ListAll(w http.ResponseWriter, r *http.Request) {
	var members []domain.TeamMember
	err := s.db.WithContext(r.Context()).
		Order("display_order ASC, name ASC").
		Find(&members).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    members,
		"count":   len(members),
	})
}

type teamPayload struct {
	Name      *string            `json:"name"`
	Role      *string            `json:"role"`
	Photo     *string            `json:"photo"`
	Email     *string            `json:"email"`
	Phone     *string            `json:"phone"`
	Languages *domain.StringList `json:"languages"`
	Order     *int               `json:"order"`
	IsActive  *bool              `json:"isActive"`
}

// Create handles POST /api/team (admin)
func (s *TeamService) Create(w http.ResponseWriter, r *http.Request) {
	var payload teamPayload
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	var missing []string
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		missing = append(missing, "name")
	}
	if payload.Role == nil || strings.TrimSpace(*payload.Role) == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		WriteError(w, r, apperrors.Validation("missing required fields: "+strings.Join(missing, ", ")))
		return
	}

	member := domain.TeamMember{
		Name:     strings.TrimSpace(*payload.Name),
		Position: strings.TrimSpace(*payload.Role),
		IsActive: true,
	}
	applyTeamPayload(&member, &payload)

	if err := s.db.WithContext(r.Context()).Create(&member).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}

	s.invalidate()
	WriteData(w, http.StatusCreated, convertTeamMember(&member))
}

// Update handles PUT /api/team/{id} (admin)
func (s *TeamService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var member domain.TeamMember
	if err := s.db.WithContext(r.Context()).First(&member, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}

	var payload teamPayload
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
		member.Name = name
	}
	if payload.Role != nil {
		role := strings.TrimSpace(*payload.Role)
		if role == "" {
			WriteError(w, r, apperrors.Validation("role cannot be empty"))
			return
		}
		member.Position = role
	}
	applyTeamPayload(&member, &payload)

	if err := s.db.WithContext(r.Context()).Save(&member).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}

	s.invalidate()
	WriteData(w, http.StatusOK, convertTeamMember(&member))
}

// Delete handles DELETE /api/team/{id} (admin)
func (s *TeamService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var member domain.TeamMember
	if err := s.db.WithContext(r.Context()).First(&member, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}
	if err := s.db.WithContext(r.Context()).Delete(&member).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "team member"))
		return
	}

	s.invalidate()
	WriteMessage(w, http.StatusOK, "Team member deleted")
}

func (s *TeamService) invalidate() {
	if s.cache != nil {
		s.cache.Delete(teamCacheKey)
	}
}

func applyTeamPayload(member *domain.TeamMember, payload *teamPayload) {
	if payload.Photo != nil {
		member.Photo = *payload.Photo
	}
	if payload.Email != nil {
		member.Email = payload.Email
	}
	if payload.Phone != nil {
		member.Phone = payload.Phone
	}
	if payload.Languages != nil {
		member.Languages = *payload.Languages
	}
	if payload.Order != nil {
		member.Order = *payload.Order
	}
	if payload.IsActive != nil {
		member.IsActive = *payload.IsActive
	}
}
