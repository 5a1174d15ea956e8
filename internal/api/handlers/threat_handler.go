package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cybershield/intel/internal/api/middleware"
	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/services"
)

type ThreatHandler struct {
	service       *services.ThreatService
	notifications *services.NotificationService
}

// NewThreatHandler wires the managed-store threat routes. notifications may
// be nil; when set, each successful mutation is recorded as an in-app
// notification.
func NewThreatHandler(service *services.ThreatService, notifications *services.NotificationService) *ThreatHandler {
	return &ThreatHandler{service: service, notifications: notifications}
}

func (h *ThreatHandler) List(c *gin.Context) {
	threats, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threats"})
		return
	}
	c.JSON(http.StatusOK, threats)
}

func (h *ThreatHandler) Get(c *gin.Context) {
	threat, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch threat")
		return
	}
	c.JSON(http.StatusOK, threat)
}

func (h *ThreatHandler) Create(c *gin.Context) {
	var threat models.Threat
	if err := c.ShouldBindJSON(&threat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Create(c.Request.Context(), &threat); err != nil {
		h.fail(c, err, "Failed to add threat")
		return
	}
	h.record(c, "create", "Threat added successfully", &threat)
	c.JSON(http.StatusCreated, threat)
}

// Update handles PATCH: only the fields present in the body change.
func (h *ThreatHandler) Update(c *gin.Context) {
	var patch models.ThreatPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	h.update(c, patch)
}

// Replace handles PUT: every editable field is overwritten, absent ones
// with their zero value.
func (h *ThreatHandler) Replace(c *gin.Context) {
	var threat models.Threat
	if err := c.ShouldBindJSON(&threat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	threat.ApplyDefaults()
	h.update(c, models.PatchFrom(threat))
}

func (h *ThreatHandler) update(c *gin.Context, patch models.ThreatPatch) {
	threat, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "Failed to update threat")
		return
	}
	h.record(c, "update", "Threat updated successfully", threat)
	c.JSON(http.StatusOK, threat)
}

func (h *ThreatHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete threat")
		return
	}
	h.record(c, "delete", "Threat deleted successfully", &models.Threat{ID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Threat deleted"})
}

func (h *ThreatHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrThreatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrThreatTitleRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Log().WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// record logs who changed which threat and, when notifications are wired,
// stores the matching in-app notification.
func (h *ThreatHandler) record(c *gin.Context, action, title string, threat *models.Threat) {
	subject := middleware.Subject(c)
	logger.WithFields(logrus.Fields{
		"action":    action,
		"threat_id": threat.ID,
		"subject":   subject,
	}).Info("threat changed")

	if h.notifications == nil {
		return
	}
	err := h.notifications.Record(&models.Notification{
		Type:     models.NotificationTypeSuccess,
		Title:    title,
		Message:  threat.Title,
		ThreatID: threat.ID,
		Actor:    subject,
	})
	if err != nil {
		logger.Log().WithError(err).Warn("Failed to record notification")
	}
}
