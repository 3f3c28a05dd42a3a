package handlers

import (
	"net/http"

	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	feed, err := h.feedService.FetchFeed(r.Context(), sess)
	if err != nil {
		writeServiceError(w, "fetch feed", err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
