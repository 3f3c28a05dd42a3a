package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mwalczyk/chirp/internal/codec"
	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
	"github.com/mwalczyk/chirp/internal/identity"
	"github.com/mwalczyk/chirp/internal/storage"
)

// AuthService orchestrates registration and login against the identity
// provider, the blob store and the user directory.
type AuthService struct {
	store   docstore.Store
	ident   *identity.Provider
	objects storage.ObjectStore
}

func NewAuthService(store docstore.Store, ident *identity.Provider, objects storage.ObjectStore) *AuthService {
	return &AuthService{
		store:   store,
		ident:   ident,
		objects: objects,
	}
}

type RegisterInput struct {
	Email        string
	Username     string
	Fullname     string
	Password     string
	ProfileImage []byte
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Register creates a new user: profile image upload, then the account, then
// the user document. The steps are strictly sequential — if the image upload
// fails no account exists, and if account creation fails no user document is
// written.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	key := fmt.Sprintf("profile_image/%s.jpg", uuid.NewString())
	err := s.objects.Put(ctx, key, bytes.NewReader(input.ProfileImage),
		int64(len(input.ProfileImage)), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("uploading profile image: %w", err)
	}
	imageURL, err := s.objects.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolving profile image url: %w", err)
	}

	uid, err := s.ident.CreateAccount(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:              uid,
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Username:        strings.ToLower(strings.TrimSpace(input.Username)),
		Fullname:        input.Fullname,
		ProfileImageURL: imageURL,
		IsCurrentUser:   true,
	}
	if _, err := s.store.Set(ctx, docstore.Users, uid, codec.EncodeUser(user)); err != nil {
		return nil, &PartialWriteError{
			Op:     "register",
			Done:   []string{"profile image", docstore.Accounts},
			Failed: docstore.Users,
			Err:    err,
		}
	}

	token, err := s.ident.Token(uid)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	uid, err := s.ident.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Get(ctx, docstore.Users, uid)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	user, err := codec.DecodeUser(doc)
	if err != nil {
		return nil, err
	}
	user.IsCurrentUser = true

	token, err := s.ident.Token(uid)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}
