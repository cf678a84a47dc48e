package search

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/database"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

func seedProperties(t *testing.T, db *gorm.DB) {
	t.Helper()
	properties := []domain.Property{
		{Title: "Marina Heights Villa", Description: "Waterfront villa", Price: 2500000, Location: "Dubai Marina", City: "Dubai", PropertyType: "villa", Status: domain.PropertyStatusForSale, Bedrooms: 4, Bathrooms: 5, Area: 4200, YearBuilt: 2020, MainImage: "/images/a.jpg", IsPublished: true},
		{Title: "Downtown Apartment", Description: "City views", Price: 1200000, Location: "Downtown", City: "Dubai", PropertyType: "apartment", Status: domain.PropertyStatusForSale, Bedrooms: 2, Bathrooms: 2, Area: 1100, YearBuilt: 2018, MainImage: "/images/b.jpg", IsPublished: true},
		{Title: "Palm Penthouse", Description: "Sea view penthouse", Price: 8000000, Location: "Palm Jumeirah", City: "Dubai", PropertyType: "penthouse", Status: domain.PropertyStatusForRent, Bedrooms: 3, Bathrooms: 4, Area: 3500, YearBuilt: 2022, MainImage: "/images/c.jpg", Featured: true, IsPublished: true},
		{Title: "Creek Tower Launch", Description: "Off-plan launch", Price: 950000, Location: "Dubai Creek", City: "Dubai", PropertyType: "apartment", Status: domain.PropertyStatusForSale, IsOffplan: true, Bedrooms: 1, Bathrooms: 1, Area: 750, MainImage: "/images/d.jpg", IsPublished: true},
		{Title: "Hidden Draft", Description: "Not public yet", Price: 100, PropertyType: "villa", Status: domain.PropertyStatusForSale, MainImage: "/images/e.jpg", IsPublished: false},
	}
	require.NoError(t, db.Create(&properties).Error)
}

func TestParsePropertyFilterDefaults(t *testing.T) {
	f, err := ParsePropertyFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, "desc", f.SortOrder)
	assert.Nil(t, f.Offplan)
	assert.Nil(t, f.MinPrice)
}

func TestParsePropertyFilterRejectsBadNumbers(t *testing.T) {
	for _, param := range []string{"minPrice", "maxPrice", "bedrooms", "bathrooms", "minArea", "maxArea", "yearBuilt", "page", "limit", "developerId"} {
		values := url.Values{}
		values.Set(param, "not-a-number")
		_, err := ParsePropertyFilter(values)
		require.Error(t, err, "parameter %q", param)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		assert.Contains(t, appErr.Message, param)
	}
}

func TestParsePropertyFilterCapsLimit(t *testing.T) {
	values := url.Values{}
	values.Set("limit", "5000")
	f, err := ParsePropertyFilter(values)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, f.Limit)
}

func TestOrderClauseAllowList(t *testing.T) {
	f := &PropertyFilter{SortBy: "price", SortOrder: "asc"}
	assert.Equal(t, "price ASC", f.OrderClause())

	// Unknown sort fields fall back to creation time rather than erroring
	f = &PropertyFilter{SortBy: "'; DROP TABLE properties; --"}
	assert.Equal(t, "created_at DESC", f.OrderClause())
}

func TestRunAppliesPredicates(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	f := &PropertyFilter{Type: "apartment", Page: 1, Limit: 10}
	properties, pagination, err := f.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, properties, 2)
	assert.EqualValues(t, 2, pagination.Total)
	for _, p := range properties {
		assert.Equal(t, "apartment", p.PropertyType)
	}
}

func TestRunPriceRange(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	min, max := 1000000.0, 3000000.0
	f := &PropertyFilter{MinPrice: &min, MaxPrice: &max, Page: 1, Limit: 10}
	properties, pagination, err := f.Run(context.Background(), db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pagination.Total)
	for _, p := range properties {
		assert.GreaterOrEqual(t, p.Price, min)
		assert.LessOrEqual(t, p.Price, max)
	}
}

func TestRunFreeTextSearch(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	f := &PropertyFilter{Search: "sea view", Page: 1, Limit: 10}
	properties, _, err := f.Run(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "Palm Penthouse", properties[0].Title)
}

func TestRunExcludesUnpublished(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	f := &PropertyFilter{Page: 1, Limit: 50}
	_, pagination, err := f.Run(context.Background(), db)
	require.NoError(t, err)
	assert.EqualValues(t, 4, pagination.Total)

	f.IncludeUnpublished = true
	_, pagination, err = f.Run(context.Background(), db)
	require.NoError(t, err)
	assert.EqualValues(t, 5, pagination.Total)
}

func TestRunPaginationMath(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	f := &PropertyFilter{Page: 1, Limit: 3}
	properties, pagination, err := f.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, properties, 3)
	assert.EqualValues(t, 4, pagination.Total)
	assert.Equal(t, 2, pagination.Pages)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)

	f.Page = 2
	properties, pagination, err = f.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, properties, 1)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}

func TestRunPageSizeNeverExceedsLimit(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	for limit := 1; limit <= 5; limit++ {
		f := &PropertyFilter{Page: 1, Limit: limit}
		properties, _, err := f.Run(context.Background(), db)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(properties), limit)
	}
}

func TestRunOffplanPreset(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	seedProperties(t, db)

	offplan := true
	f := &PropertyFilter{Offplan: &offplan, Page: 1, Limit: 10}
	properties, _, err := f.Run(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "Creek Tower Launch", properties[0].Title)
}

func TestCacheKeyPartsAreDeterministic(t *testing.T) {
	values := url.Values{}
	values.Set("type", "villa")
	values.Set("minPrice", "100")
	f1, err := ParsePropertyFilter(values)
	require.NoError(t, err)
	f2, err := ParsePropertyFilter(values)
	require.NoError(t, err)
	assert.Equal(t, f1.CacheKeyParts(), f2.CacheKeyParts())
}
