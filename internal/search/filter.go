// Package search implements the property listing pipeline: a typed
// filter that translates optional request parameters into query
// predicates, and a batch enricher that attaches related entities.
package search

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// sortColumns is the allow-list of sortable fields. Unknown sort keys
// silently fall back to creation time rather than erroring.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"price":      "price",
	"bedrooms":   "bedrooms",
	"bathrooms":  "bathrooms",
	"area":       "area",
	"yearBuilt":  "year_built",
	"year_built": "year_built",
}

// PropertyFilter is the full set of optional search parameters,
// validated once at the boundary. Nil/zero fields impose no predicate.
type PropertyFilter struct {
	Type        string
	Status      string
	Offplan     *bool
	MinPrice    *float64
	MaxPrice    *float64
	Bedrooms    *int
	Bathrooms   *int
	MinArea     *float64
	MaxArea     *float64
	Location    string
	YearBuilt   *int
	Search      string
	Featured    *bool
	DeveloperID *uint
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int

	// IncludeUnpublished is set for admin views only, never from
	// request parameters.
	IncludeUnpublished bool
}

// ParsePropertyFilter builds a PropertyFilter from query parameters.
// Numeric parameters that fail to parse are rejected with a validation
// error naming the parameter; they are never silently dropped.
func ParsePropertyFilter(values url.Values) (*PropertyFilter, error) {
	f := &PropertyFilter{
		Type:      strings.TrimSpace(values.Get("type")),
		Status:    strings.TrimSpace(values.Get("status")),
		Location:  strings.TrimSpace(values.Get("location")),
		Search:    strings.TrimSpace(values.Get("search")),
		SortBy:    strings.TrimSpace(values.Get("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(values.Get("sortOrder"))),
		Page:      1,
		Limit:     DefaultLimit,
	}

	var err error
	if f.Offplan, err = parseBoolParam(values, "isOffplan"); err != nil {
		return nil, err
	}
	if f.Featured, err = parseBoolParam(values, "featured"); err != nil {
		return nil, err
	}
	if f.MinPrice, err = parseFloatParam(values, "minPrice"); err != nil {
		return nil, err
	}
	if f.MaxPrice, err = parseFloatParam(values, "maxPrice"); err != nil {
		return nil, err
	}
	if f.MinArea, err = parseFloatParam(values, "minArea"); err != nil {
		return nil, err
	}
	if f.MaxArea, err = parseFloatParam(values, "maxArea"); err != nil {
		return nil, err
	}
	if f.Bedrooms, err = parseIntParam(values, "bedrooms"); err != nil {
		return nil, err
	}
	if f.Bathrooms, err = parseIntParam(values, "bathrooms"); err != nil {
		return nil, err
	}
	if f.YearBuilt, err = parseIntParam(values, "yearBuilt"); err != nil {
		return nil, err
	}

	if devID, err := parseIntParam(values, "developerId"); err != nil {
		return nil, err
	} else if devID != nil {
		if *devID < 0 {
			return nil, apperrors.Validation("invalid value for parameter 'developerId'")
		}
		id := uint(*devID)
		f.DeveloperID = &id
	}

	if page, err := parseIntParam(values, "page"); err != nil {
		return nil, err
	} else if page != nil && *page > 0 {
		f.Page = *page
	}
	if limit, err := parseIntParam(values, "limit"); err != nil {
		return nil, err
	} else if limit != nil && *limit > 0 {
		f.Limit = *limit
		if f.Limit > MaxLimit {
			f.Limit = MaxLimit
		}
	}

	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}

	return f, nil
}

// Apply adds one predicate per present parameter to the query.
func (f *PropertyFilter) Apply(q *gorm.DB) *gorm.DB {
	if !f.IncludeUnpublished {
		q = q.Where("is_published = ?", true)
	}
	if f.Type != "" {
		q = q.Where("property_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Offplan != nil {
		q = q.Where("is_offplan = ?", *f.Offplan)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Bedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.Bedrooms)
	}
	if f.Bathrooms != nil {
		q = q.Where("bathrooms >= ?", *f.Bathrooms)
	}
	if f.MinArea != nil {
		q = q.Where("area >= ?", *f.MinArea)
	}
	if f.MaxArea != nil {
		q = q.Where("area <= ?", *f.MaxArea)
	}
	if f.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", contains(f.Location))
	}
	if f.YearBuilt != nil {
		q = q.Where("year_built = ?", *f.YearBuilt)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.DeveloperID != nil {
		q = q.Where("developer_id = ?", *f.DeveloperID)
	}
	if f.Search != "" {
		pattern := contains(f.Search)
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ? OR LOWER(address) LIKE ? OR LOWER(city) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	return q
}

// OrderClause returns the validated ORDER BY clause.
func (f *PropertyFilter) OrderClause() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

// Pagination describes the page of results returned by Run.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// Run executes the page query and the count query concurrently. Both
// share the filter's predicates; only the page query applies ordering
// and pagination.
func (f *PropertyFilter) Run(ctx context.Context, db *gorm.DB) ([]domain.Property, *Pagination, error) {
	offset := (f.Page - 1) * f.Limit

	var (
		properties []domain.Property
		total      int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := f.Apply(db.WithContext(gctx).Model(&domain.Property{}))
		return q.Order(f.OrderClause()).Offset(offset).Limit(f.Limit).Find(&properties).Error
	})
	g.Go(func() error {
		q := f.Apply(db.WithContext(gctx).Model(&domain.Property{}))
		return q.Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("property search failed: %w", err)
	}

	return properties, NewPagination(f.Page, f.Limit, total), nil
}

// CacheKeyParts returns the ordered serialization of the effective
// parameters, used to build the response cache key.
func (f *PropertyFilter) CacheKeyParts() []string {
	parts := []string{
		"type=" + f.Type,
		"status=" + f.Status,
		"offplan=" + formatBool(f.Offplan),
		"minPrice=" + formatFloat(f.MinPrice),
		"maxPrice=" + formatFloat(f.MaxPrice),
		"bedrooms=" + formatInt(f.Bedrooms),
		"bathrooms=" + formatInt(f.Bathrooms),
		"minArea=" + formatFloat(f.MinArea),
		"maxArea=" + formatFloat(f.MaxArea),
		"location=" + strings.ToLower(f.Location),
		"yearBuilt=" + formatInt(f.YearBuilt),
		"search=" + strings.ToLower(f.Search),
		"featured=" + formatBool(f.Featured),
		"sortBy=" + f.SortBy,
		"sortOrder=" + f.SortOrder,
		fmt.Sprintf("page=%d", f.Page),
		fmt.Sprintf("limit=%d", f.Limit),
	}
	if f.DeveloperID != nil {
		parts = append(parts, fmt.Sprintf("developerId=%d", *f.DeveloperID))
	}
	return parts
}

// EchoFilters returns the effective filters for the response envelope.
func (f *PropertyFilter) EchoFilters() map[string]interface{} {
	echo := map[string]interface{}{
		"sortBy":    f.SortBy,
		"sortOrder": f.SortOrder,
	}
	if f.Type != "" {
		echo["type"] = f.Type
	}
	if f.Status != "" {
		echo["status"] = f.Status
	}
	if f.Offplan != nil {
		echo["isOffplan"] = *f.Offplan
	}
	if f.MinPrice != nil {
		echo["minPrice"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		echo["maxPrice"] = *f.MaxPrice
	}
	if f.Bedrooms != nil {
		echo["bedrooms"] = *f.Bedrooms
	}
	if f.Bathrooms != nil {
		echo["bathrooms"] = *f.Bathrooms
	}
	if f.MinArea != nil {
		echo["minArea"] = *f.MinArea
	}
	if f.MaxArea != nil {
		echo["maxArea"] = *f.MaxArea
	}
	if f.Location != "" {
		echo["location"] = f.Location
	}
	if f.YearBuilt != nil {
		echo["yearBuilt"] = *f.YearBuilt
	}
	if f.Search != "" {
		echo["search"] = f.Search
	}
	if f.Featured != nil {
		echo["featured"] = *f.Featured
	}
	if f.DeveloperID != nil {
		echo["developerId"] = *f.DeveloperID
	}
	return echo
}

// NewPagination computes the paging metadata for an offset query.
func NewPagination(page, limit int, total int64) *Pagination {
	return &Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   int(math.Ceil(float64(total) / float64(limit))),
		HasNext: int64((page-1)*limit+limit) < total,
		HasPrev: page > 1,
	}
}

// ParsePageParam reads a positive integer parameter, falling back to
// the default when absent and rejecting unparseable or non-positive
// values.
func ParsePageParam(values url.Values, name string, fallback int) (int, error) {
	v, err := parseIntParam(values, name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	if *v <= 0 {
		return 0, apperrors.Validation(fmt.Sprintf("invalid value for parameter '%s'", name))
	}
	return *v, nil
}

func contains(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid value for parameter '%s'", name))
	}
	return &v, nil
}

func parseIntParam(values url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid value for parameter '%s'", name))
	}
	return &v, nil
}

func parseBoolParam(values url.Values, name string) (*bool, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid value for parameter '%s'", name))
	}
	return &v, nil
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
