package handlers

import (
	"net/http"

	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	notifications, err := h.notificationService.Fetch(r.Context(), sess)
	if err != nil {
		writeServiceError(w, "fetch notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}
