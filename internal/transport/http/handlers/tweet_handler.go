package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/internal/transport/http/middleware"
	"github.com/mwalczyk/chirp/pkg/validator"
)

type TweetHandler struct {
	tweetService *service.TweetService
}

func NewTweetHandler(tweetService *service.TweetService) *TweetHandler {
	return &TweetHandler{tweetService: tweetService}
}

type captionInput struct {
	Caption string `json:"caption"`
}

func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input captionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateCaption(input.Caption); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	sess := middleware.GetSession(r.Context())
	tweet, err := h.tweetService.CreateTweet(r.Context(), sess, input.Caption)
	if err != nil {
		writeServiceError(w, "create tweet", err)
		return
	}
	writeJSON(w, http.StatusCreated, tweet)
}

func (h *TweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	tweet, err := h.tweetService.FetchTweet(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "fetch tweet", err)
		return
	}
	writeJSON(w, http.StatusOK, tweet)
}

func (h *TweetHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	tweets, err := h.tweetService.FetchAllTweets(r.Context(), sess)
	if err != nil {
		writeServiceError(w, "list tweets", err)
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	tweets, err := h.tweetService.FetchTweetsByAuthor(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "list tweets by author", err)
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if err := h.tweetService.DeleteTweet(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, "delete tweet", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TweetHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var input captionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateCaption(input.Caption); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	sess := middleware.GetSession(r.Context())
	reply, err := h.tweetService.CreateReply(r.Context(), sess, r.PathValue("id"), input.Caption)
	if err != nil {
		writeServiceError(w, "create reply", err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *TweetHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	replies, err := h.tweetService.FetchReplies(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "list replies", err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

func (h *TweetHandler) ListRepliesByAuthor(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	replies, err := h.tweetService.FetchRepliesByAuthor(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "list replies by author", err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

func (h *TweetHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	tweets, err := h.tweetService.FetchLikedTweets(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "list liked tweets", err)
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	tweet, err := h.tweetService.ToggleLike(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "toggle like", err)
		return
	}
	writeJSON(w, http.StatusOK, tweet)
}
