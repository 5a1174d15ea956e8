package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/services"
)

func setupNotificationRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := setupTestDB(t)
	h := NewNotificationHandler(services.NewNotificationService(db))
	r := newRouter()
	r.GET("/notifications", h.List)
	r.POST("/notifications/:id/read", h.MarkAsRead)
	r.POST("/notifications/read-all", h.MarkAllAsRead)
	return r, db
}

func TestNotificationHandler_List(t *testing.T) {
	r, db := setupNotificationRouter(t)
	require.NoError(t, db.Create(&models.Notification{Title: "Test 1", Message: "Msg 1"}).Error)
	require.NoError(t, db.Create(&models.Notification{Title: "Test 2", Message: "Msg 2", Read: true}).Error)

	w := doJSON(r, http.MethodGet, "/notifications", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var notifications []models.Notification
	decode(t, w, &notifications)
	assert.Len(t, notifications, 2)

	w = doJSON(r, http.MethodGet, "/notifications?unread=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	notifications = nil
	decode(t, w, &notifications)
	assert.Len(t, notifications, 1)
}

func TestNotificationHandler_MarkAsRead(t *testing.T) {
	r, db := setupNotificationRouter(t)
	n := models.Notification{Title: "Unread"}
	require.NoError(t, db.Create(&n).Error)

	w := doJSON(r, http.MethodPost, "/notifications/"+n.ID+"/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	assert.True(t, stored.Read)

	w = doJSON(r, http.MethodPost, "/notifications/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_MarkAllAsRead(t *testing.T) {
	r, db := setupNotificationRouter(t)
	require.NoError(t, db.Create(&models.Notification{Title: "1"}).Error)
	require.NoError(t, db.Create(&models.Notification{Title: "2"}).Error)

	w := doJSON(r, http.MethodPost, "/notifications/read-all", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var unread int64
	db.Model(&models.Notification{}).Where("read = ?", false).Count(&unread)
	assert.Zero(t, unread)
}
