package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/internal/transport/http/middleware"
	"github.com/mwalczyk/chirp/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	user, err := h.userService.FetchUser(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "fetch user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	user, err := h.userService.FetchUserByUsername(r.Context(), sess, r.PathValue("username"))
	if err != nil {
		writeServiceError(w, "fetch user by username", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	users, err := h.userService.ListUsers(r.Context(), sess)
	if err != nil {
		writeServiceError(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if err := h.userService.FollowUser(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, "follow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if err := h.userService.UnfollowUser(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, "unfollow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.RelationStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "relation stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProfileUpdate(input.Fullname, input.Username, input.Bio); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	sess := middleware.GetSession(r.Context())
	user, err := h.userService.UpdateProfile(r.Context(), sess, input)
	if err != nil {
		writeServiceError(w, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfileImage replaces the session user's profile image. Multipart
// form with a profile_image file, like registration.
func (h *UserHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("profile_image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_IMAGE", "A profile image is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxProfileImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Could not read profile image")
		return
	}

	sess := middleware.GetSession(r.Context())
	user, err := h.userService.UpdateProfileImage(r.Context(), sess, image)
	if err != nil {
		writeServiceError(w, "update profile image", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
