// Package identity is the identity-provider gateway: account records,
// credential checks and session tokens. Accounts live in the document store
// like any other collection; user profiles are kept separately by the user
// directory.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/mwalczyk/chirp/internal/docstore"
)

var (
	ErrEmailTaken   = errors.New("email already taken")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const tokenTTL = 24 * time.Hour

type Provider struct {
	store  docstore.Store
	secret []byte
}

func New(store docstore.Store, jwtSecret string) *Provider {
	return &Provider{
		store:  store,
		secret: []byte(jwtSecret),
	}
}

// CreateAccount registers credentials and returns the new account's uid.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	existing, err := p.store.Query(ctx, docstore.Accounts, "email", email)
	if err != nil {
		return "", fmt.Errorf("looking up account: %w", err)
	}
	if len(existing) > 0 {
		return "", ErrEmailTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	uid, err := p.store.Set(ctx, docstore.Accounts, "", map[string]any{
		"email":        email,
		"passwordHash": hash,
		"createdAt":    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("creating account: %w", err)
	}
	return uid, nil
}

// SignIn verifies credentials and returns the account's uid.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	docs, err := p.store.Query(ctx, docstore.Accounts, "email", normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", ErrInvalidCreds
	}

	hash, _ := docs[0].Fields["passwordHash"].(string)
	if !verifyPassword(password, hash) {
		return "", ErrInvalidCreds
	}
	return docs[0].ID, nil
}

// Token mints a signed session token for a uid.
func (p *Provider) Token(uid string) (string, error) {
	claims := jwt.MapClaims{
		"sub": uid,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// VerifyToken validates a session token and returns the uid it carries.
func (p *Provider) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	if _, err := uuid.Parse(sub); err != nil {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return fmt.Sprintf("%s:%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyPassword(password, encoded string) bool {
	saltB64, hashB64, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
