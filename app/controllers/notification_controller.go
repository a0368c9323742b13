package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"medstock/app/middleware"
	"medstock/app/services"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(n *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: n}
}

func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	rows, err := c.Notifications.List(p.UserID, q.Get("unread") == "true", limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": rows})
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	raw := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	raw = strings.TrimSuffix(raw, "/read")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	found, err := c.Notifications.MarkRead(uint(id), p.UserID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeJSONError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}
