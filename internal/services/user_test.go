package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
)

func TestRegisterLoginMe(t *testing.T) {
	_, handler := newTestServer(t)

	register := doJSON(t, handler, http.MethodPost, "/api/users", map[string]string{
		"name":     "Jamie Khan",
		"email":    "Jamie@Example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusCreated, register.Code)
	registerEnv := decodeEnvelope(t, register)
	assert.Equal(t, true, registerEnv["success"])
	assert.NotEmpty(t, registerEnv["token"])
	data := registerEnv["data"].(map[string]interface{})
	assert.Equal(t, "jamie@example.com", data["email"])
	assert.Equal(t, "Jamie", data["firstName"])
	assert.Equal(t, "Khan", data["lastName"])
	assert.Equal(t, domain.RoleUser, data["role"])

	login := doJSON(t, handler, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "jamie@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusOK, login.Code)
	token := decodeEnvelope(t, login)["token"].(string)
	require.NotEmpty(t, token)

	me := doJSON(t, handler, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, me.Code)
	meData := decodeEnvelope(t, me)["data"].(map[string]interface{})
	assert.Equal(t, "jamie@example.com", meData["email"])
}

func TestLoginRecordsLastLogin(t *testing.T) {
	db, handler := newTestServer(t)
	user, _ := createUser(t, db, "agent@test.com", domain.RoleAgent)
	require.Nil(t, user.LastLogin)

	rec := doJSON(t, handler, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "agent@test.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db, handler := newTestServer(t)
	createUser(t, db, "someone@test.com", domain.RoleUser)

	rec := doJSON(t, handler, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "someone@test.com",
		"password": "not-the-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decodeEnvelope(t, rec)["success"])
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	db, handler := newTestServer(t)
	user, _ := createUser(t, db, "gone@test.com", domain.RoleUser)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	rec := doJSON(t, handler, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "gone@test.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db, handler := newTestServer(t)
	createUser(t, db, "taken@test.com", domain.RoleUser)

	rec := doJSON(t, handler, http.MethodPost, "/api/users", map[string]string{
		"name":     "Second Account",
		"email":    "taken@test.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, decodeEnvelope(t, rec)["success"])
}

func TestRegisterValidatesInput(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/users", map[string]string{
		"email": "only@test.com",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	message := decodeEnvelope(t, rec)["message"].(string)
	assert.Contains(t, message, "name")
	assert.Contains(t, message, "password")

	short := doJSON(t, handler, http.MethodPost, "/api/users", map[string]string{
		"name":     "Shorty",
		"email":    "short@test.com",
		"password": "tiny",
	}, "")
	require.Equal(t, http.StatusBadRequest, short.Code)
}

func TestUserListRequiresAdmin(t *testing.T) {
	db, handler := newTestServer(t)
	_, userToken := createUser(t, db, "plain@test.com", domain.RoleUser)
	_, adminToken := createUser(t, db, "boss@test.com", domain.RoleAdmin)

	forbidden := doJSON(t, handler, http.MethodGet, "/api/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	allowed := doJSON(t, handler, http.MethodGet, "/api/users", nil, adminToken)
	require.Equal(t, http.StatusOK, allowed.Code)
	assert.Equal(t, float64(2), decodeEnvelope(t, allowed)["count"])
}

func TestPasswordResetFlow(t *testing.T) {
	db, handler := newTestServer(t)
	user, _ := createUser(t, db, "forgetful@test.com", domain.RoleUser)

	forgot := doJSON(t, handler, http.MethodPost, "/api/users/forgot-password", map[string]string{
		"email": "forgetful@test.com",
	}, "")
	require.Equal(t, http.StatusOK, forgot.Code)

	// The same response is returned for unknown emails.
	unknown := doJSON(t, handler, http.MethodPost, "/api/users/forgot-password", map[string]string{
		"email": "nobody@test.com",
	}, "")
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, decodeEnvelope(t, forgot)["message"], decodeEnvelope(t, unknown)["message"])

	require.NoError(t, db.First(user, user.ID).Error)
	require.NotNil(t, user.ResetToken)

	reset := doJSON(t, handler, http.MethodPost, "/api/users/reset-password/"+*user.ResetToken, map[string]string{
		"password": "brand-new-password",
	}, "")
	require.Equal(t, http.StatusOK, reset.Code)

	login := doJSON(t, handler, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "forgetful@test.com",
		"password": "brand-new-password",
	}, "")
	assert.Equal(t, http.StatusOK, login.Code)

	// The token is single use.
	again := doJSON(t, handler, http.MethodPost, "/api/users/reset-password/"+*user.ResetToken, map[string]string{
		"password": "another-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}
