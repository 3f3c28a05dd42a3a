package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mwalczyk/chirp/internal/identity"
	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/pkg/validator"
)

const maxProfileImageBytes = 5 << 20

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register accepts a multipart form: email, username, fullname, password and
// a profile_image file. The image is required; registration without one is
// rejected before anything is written.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
		return
	}

	input := service.RegisterInput{
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Fullname: r.FormValue("fullname"),
		Password: r.FormValue("password"),
	}

	if errs := validator.ValidateRegister(input.Email, input.Username, input.Fullname, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	file, _, err := r.FormFile("profile_image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_IMAGE", "A profile image is required")
		return
	}
	defer file.Close()

	input.ProfileImage, err = io.ReadAll(io.LimitReader(file, maxProfileImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Could not read profile image")
		return
	}

	resp, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
			return
		}
		writeServiceError(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCreds) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		writeServiceError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
