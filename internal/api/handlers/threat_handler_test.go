package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/api/middleware"
	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/services"
)

func setupThreatRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := setupTestDB(t)
	ns := services.NewNotificationService(db)
	h := NewThreatHandler(services.NewThreatService(db, nil), ns)

	r := newRouter()
	r.GET("/threats", h.List)
	r.POST("/threats", h.Create)
	r.GET("/threats/:id", h.Get)
	r.PATCH("/threats/:id", h.Update)
	r.PUT("/threats/:id", h.Replace)
	r.DELETE("/threats/:id", h.Delete)
	return r, db
}

func TestThreatHandler_CreateAndList(t *testing.T) {
	r, db := setupThreatRouter(t)

	w := doJSON(r, http.MethodPost, "/threats", map[string]interface{}{
		"title":            "Log4Shell",
		"severity":         "critical",
		"cve_id":           "CVE-2021-44228",
		"affected_systems": 12,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Threat
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.CategoryVulnerability, created.Category)
	assert.Equal(t, models.StatusUnmitigated, created.MitigationStatus)
	assert.False(t, created.CreatedAt.IsZero())

	w = doJSON(r, http.MethodGet, "/threats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var threats []models.Threat
	decode(t, w, &threats)
	require.Len(t, threats, 1)
	assert.Equal(t, "Log4Shell", threats[0].Title)

	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "Threat added successfully", notes[0].Title)
}

func TestThreatHandler_CreateValidation(t *testing.T) {
	r, _ := setupThreatRouter(t)

	w := doJSON(r, http.MethodPost, "/threats", map[string]string{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/threats", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThreatHandler_GetMissing(t *testing.T) {
	r, _ := setupThreatRouter(t)

	w := doJSON(r, http.MethodGet, "/threats/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThreatHandler_Patch(t *testing.T) {
	r, db := setupThreatRouter(t)
	threat := models.Threat{Title: "Phish", Severity: "low", Description: "kept"}
	threat.ApplyDefaults()
	require.NoError(t, db.Create(&threat).Error)

	w := doJSON(r, http.MethodPatch, "/threats/"+threat.ID, map[string]string{"mitigation_status": "mitigated"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Threat
	decode(t, w, &updated)
	assert.Equal(t, models.StatusMitigated, updated.MitigationStatus)
	assert.Equal(t, "kept", updated.Description)
	assert.Equal(t, "low", updated.Severity)

	w = doJSON(r, http.MethodPatch, "/threats/"+threat.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPatch, "/threats/"+threat.ID, map[string]string{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPatch, "/threats/missing", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThreatHandler_Replace(t *testing.T) {
	r, db := setupThreatRouter(t)
	threat := models.Threat{Title: "Old", Description: "dropped", Source: "OSINT"}
	threat.ApplyDefaults()
	require.NoError(t, db.Create(&threat).Error)

	w := doJSON(r, http.MethodPut, "/threats/"+threat.ID, map[string]string{"title": "New", "severity": "high"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Threat
	decode(t, w, &updated)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "high", updated.Severity)
	assert.Empty(t, updated.Description)
	assert.Empty(t, updated.Source)
	assert.Equal(t, models.CategoryVulnerability, updated.Category)
}

func TestThreatHandler_Delete(t *testing.T) {
	r, db := setupThreatRouter(t)
	threat := models.Threat{Title: "Gone"}
	require.NoError(t, db.Create(&threat).Error)

	w := doJSON(r, http.MethodDelete, "/threats/"+threat.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Threat{}).Count(&count)
	assert.Zero(t, count)

	w = doJSON(r, http.MethodDelete, "/threats/"+threat.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThreatHandler_RecordsTokenSubject(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(true, buf)
	t.Cleanup(func() { logger.Init(false, io.Discard) })

	db := setupTestDB(t)
	h := NewThreatHandler(services.NewThreatService(db, nil), services.NewNotificationService(db))
	r := newRouter()
	r.Use(middleware.AuthMiddleware("handler-secret"))
	r.POST("/threats", h.Create)
	r.DELETE("/threats/:id", h.Delete)

	token, err := middleware.IssueToken("handler-secret", "soc-7", middleware.RoleAnalyst, time.Hour)
	require.NoError(t, err)
	send := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/threats", []byte(`{"title":"Volt Typhoon"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Threat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = send(http.MethodDelete, "/threats/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, "soc-7", n.Actor)
		assert.Equal(t, created.ID, n.ThreatID)
		if n.Title == "Threat added successfully" {
			assert.Equal(t, "Volt Typhoon", n.Message)
		}
	}

	out := buf.String()
	assert.Contains(t, out, "subject=soc-7")
	assert.Contains(t, out, "action=create")
	assert.Contains(t, out, "action=delete")
}
