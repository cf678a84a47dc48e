package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
)

func TestTestimonialApprovalFlow(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	created := doJSON(t, handler, http.MethodPost, "/api/testimonials", map[string]interface{}{
		"name":  "Happy Client",
		"role":  "Buyer",
		"quote": "Found our dream home in a week.",
	}, adminToken)
	require.Equal(t, http.StatusCreated, created.Code)
	data := decodeEnvelope(t, created)["data"].(map[string]interface{})
	assert.Equal(t, "Found our dream home in a week.", data["quote"])
	assert.Equal(t, float64(5), data["rating"])
	testimonialID := uint(data["id"].(float64))

	// Unapproved testimonials stay out of the public listing.
	public := doJSON(t, handler, http.MethodGet, "/api/testimonials", nil, "")
	require.Equal(t, http.StatusOK, public.Code)
	assert.Equal(t, float64(0), decodeEnvelope(t, public)["count"])

	approved := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/testimonials/%d/approve", testimonialID), nil, adminToken)
	require.Equal(t, http.StatusOK, approved.Code)

	visible := doJSON(t, handler, http.MethodGet, "/api/testimonials", nil, "")
	items := decodeEnvelope(t, visible)["data"].([]interface{})
	require.Len(t, items, 1)
	entry := items[0].(map[string]interface{})
	assert.Equal(t, "Found our dream home in a week.", entry["quote"])
	assert.NotContains(t, entry, "content")
}

func TestTestimonialAdminEditAndFetch(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	created := doJSON(t, handler, http.MethodPost, "/api/testimonials", map[string]interface{}{
		"name":  "Early Buyer",
		"quote": "Great handover experience.",
	}, adminToken)
	require.Equal(t, http.StatusCreated, created.Code)
	id := uint(decodeEnvelope(t, created)["data"].(map[string]interface{})["id"].(float64))

	updated := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/testimonials/%d", id), map[string]interface{}{
		"quote":  "Great handover, snag list cleared fast.",
		"rating": 4,
	}, adminToken)
	require.Equal(t, http.StatusOK, updated.Code)
	data := decodeEnvelope(t, updated)["data"].(map[string]interface{})
	assert.Equal(t, "Great handover, snag list cleared fast.", data["quote"])
	assert.Equal(t, float64(4), data["rating"])

	fetched := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/testimonials/%d", id), nil, adminToken)
	require.Equal(t, http.StatusOK, fetched.Code)
	got := decodeEnvelope(t, fetched)["data"].(map[string]interface{})
	assert.Equal(t, "Early Buyer", got["name"])
	assert.Equal(t, "Great handover, snag list cleared fast.", got["content"])
	assert.Equal(t, false, got["approved"])

	bad := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/testimonials/%d", id), map[string]interface{}{
		"rating": 0,
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestTestimonialRatingBounds(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	rec := doJSON(t, handler, http.MethodPost, "/api/testimonials", map[string]interface{}{
		"name":   "Too Generous",
		"quote":  "Eleven stars.",
		"rating": 11,
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamListActiveMembersSorted(t *testing.T) {
	db, handler := newTestServer(t)

	for _, m := range []domain.TeamMember{
		{Name: "Second", Position: "Agent", Order: 2, IsActive: true},
		{Name: "First", Position: "Director", Order: 1, IsActive: true, Languages: domain.StringList{"english", "arabic"}},
		{Name: "Hidden", Position: "Former Agent", Order: 0, IsActive: false},
	} {
		member := m
		require.NoError(t, db.Create(&member).Error)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/team", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeEnvelope(t, rec)["data"].([]interface{})
	require.Len(t, items, 2)

	first := items[0].(map[string]interface{})
	assert.Equal(t, "First", first["name"])
	assert.Equal(t, "Director", first["role"])
	assert.NotContains(t, first, "position")
	assert.Equal(t, []interface{}{"english", "arabic"}, first["languages"])

	// The second request is a cache hit.
	again := doJSON(t, handler, http.MethodGet, "/api/team", nil, "")
	assert.Equal(t, true, decodeEnvelope(t, again)["fromCache"])
}

func TestTeamWriteInvalidatesCache(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	doJSON(t, handler, http.MethodGet, "/api/team", nil, "")

	created := doJSON(t, handler, http.MethodPost, "/api/team", map[string]interface{}{
		"name": "New Hire",
		"role": "Agent",
	}, adminToken)
	require.Equal(t, http.StatusCreated, created.Code)

	listed := decodeEnvelope(t, doJSON(t, handler, http.MethodGet, "/api/team", nil, ""))
	assert.NotContains(t, listed, "fromCache")
	assert.Equal(t, float64(1), listed["count"])
}

func TestDeveloperSlugLookup(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	created := doJSON(t, handler, http.MethodPost, "/api/developers", map[string]interface{}{
		"name":     "Emaar Clone Estates",
		"featured": true,
	}, adminToken)
	require.Equal(t, http.StatusCreated, created.Code)
	data := decodeEnvelope(t, created)["data"].(map[string]interface{})
	require.Equal(t, "emaar-clone-estates", data["slug"])
	developerID := uint(data["id"].(float64))

	seedProperty(t, db, "By Developer", func(p *domain.Property) {
		p.DeveloperID = &developerID
	})
	seedProperty(t, db, "Unpublished", func(p *domain.Property) {
		p.DeveloperID = &developerID
		p.IsPublished = false
	})

	rec := doJSON(t, handler, http.MethodGet, "/api/developers/emaar-clone-estates", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Emaar Clone Estates", payload["developer"].(map[string]interface{})["name"])
	assert.Len(t, payload["properties"], 1)

	missing := doJSON(t, handler, http.MethodGet, "/api/developers/no-such-developer", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestBlogDraftVisibility(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	created := doJSON(t, handler, http.MethodPost, "/api/blog", map[string]interface{}{
		"title":   "Market Outlook 2027",
		"content": "Prices keep climbing.",
		"tags":    []string{"market", "Dubai"},
	}, adminToken)
	require.Equal(t, http.StatusCreated, created.Code)
	data := decodeEnvelope(t, created)["data"].(map[string]interface{})
	require.Equal(t, "market-outlook-2027", data["slug"])
	assert.Equal(t, domain.BlogStatusDraft, data["status"])
	postID := uint(data["id"].(float64))

	// Drafts are invisible to the public.
	publicList := doJSON(t, handler, http.MethodGet, "/api/blog", nil, "")
	assert.Empty(t, decodeEnvelope(t, publicList)["data"])
	publicGet := doJSON(t, handler, http.MethodGet, "/api/blog/market-outlook-2027", nil, "")
	assert.Equal(t, http.StatusNotFound, publicGet.Code)

	// Admins see drafts in both views, and the author comes back
	// resolved.
	adminGet := doJSON(t, handler, http.MethodGet, "/api/blog/market-outlook-2027", nil, adminToken)
	require.Equal(t, http.StatusOK, adminGet.Code)
	adminData := decodeEnvelope(t, adminGet)["data"].(map[string]interface{})
	author := adminData["author"].(map[string]interface{})
	assert.Equal(t, "Test User", author["name"])

	published := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/blog/%d", postID), map[string]interface{}{
		"status": domain.BlogStatusPublished,
	}, adminToken)
	require.Equal(t, http.StatusOK, published.Code)

	visible := doJSON(t, handler, http.MethodGet, "/api/blog/market-outlook-2027", nil, "")
	assert.Equal(t, http.StatusOK, visible.Code)

	// Numeric lookups resolve the same post by id.
	byID := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/blog/%d", postID), nil, "")
	require.Equal(t, http.StatusOK, byID.Code)
	byIDData := decodeEnvelope(t, byID)["data"].(map[string]interface{})
	assert.Equal(t, "market-outlook-2027", byIDData["slug"])

	tags := doJSON(t, handler, http.MethodGet, "/api/blog/tags", nil, "")
	require.Equal(t, http.StatusOK, tags.Code)
	assert.ElementsMatch(t, []interface{}{"market", "dubai"}, decodeEnvelope(t, tags)["data"])
}

func TestBlogRecentLimit(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	for i := 1; i <= 5; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/blog", map[string]interface{}{
			"title":   fmt.Sprintf("Post %d", i),
			"content": "Body",
			"status":  domain.BlogStatusPublished,
		}, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/blog/recent?limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeEnvelope(t, rec)["data"], 2)

	bad := doJSON(t, handler, http.MethodGet, "/api/blog/recent?limit=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}
