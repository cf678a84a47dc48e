package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
)

func TestContactSubmissionAndAdminInbox(t *testing.T) {
	db, handler := newTestServer(t)
	_, adminToken := createUser(t, db, "admin@test.com", domain.RoleAdmin)

	created := doJSON(t, handler, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@test.com",
		"subject": "Viewing request",
		"message": "I would like to arrange a viewing.",
	}, "")
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Equal(t, true, decodeEnvelope(t, created)["success"])

	unread := doJSON(t, handler, http.MethodGet, "/api/contact?read=false", nil, adminToken)
	require.Equal(t, http.StatusOK, unread.Code)
	items := decodeEnvelope(t, unread)["data"].([]interface{})
	require.Len(t, items, 1)
	messageID := uint(items[0].(map[string]interface{})["id"].(float64))

	marked := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/contact/%d/read", messageID), nil, adminToken)
	require.Equal(t, http.StatusOK, marked.Code)

	after := doJSON(t, handler, http.MethodGet, "/api/contact?read=false", nil, adminToken)
	assert.Equal(t, float64(0), decodeEnvelope(t, after)["count"])
}

func TestContactValidatesSubmission(t *testing.T) {
	_, handler := newTestServer(t)

	missing := doJSON(t, handler, http.MethodPost, "/api/contact", map[string]string{
		"name": "No Message",
	}, "")
	require.Equal(t, http.StatusBadRequest, missing.Code)
	message := decodeEnvelope(t, missing)["message"].(string)
	assert.Contains(t, message, "email")
	assert.Contains(t, message, "message")

	badEmail := doJSON(t, handler, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Typo",
		"email":   "nope",
		"message": "hi",
	}, "")
	assert.Equal(t, http.StatusBadRequest, badEmail.Code)
}

func TestContactInboxRequiresAdmin(t *testing.T) {
	db, handler := newTestServer(t)
	_, token := createUser(t, db, "user@test.com", domain.RoleUser)

	rec := doJSON(t, handler, http.MethodGet, "/api/contact", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	anonymous := doJSON(t, handler, http.MethodGet, "/api/contact", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
}
