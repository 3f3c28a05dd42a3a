package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mwalczyk/chirp/internal/codec"
	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
	"github.com/mwalczyk/chirp/internal/storage"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("cannot follow yourself")
)

// UserService is the user directory: profile CRUD plus the follow graph.
// Follow edges are dual-indexed (follower's user-following and followee's
// user-followers); the two writes are sequential, not atomic.
type UserService struct {
	store         docstore.Store
	objects       storage.ObjectStore
	notifications *NotificationService
}

func NewUserService(store docstore.Store, objects storage.ObjectStore, notifications *NotificationService) *UserService {
	return &UserService{
		store:         store,
		objects:       objects,
		notifications: notifications,
	}
}

// FetchUser loads a user by id and fills the per-view fields: IsCurrentUser
// against the session, IsFollowed when looking at someone else.
func (s *UserService) FetchUser(ctx context.Context, sess domain.Session, uid string) (*domain.User, error) {
	doc, err := s.store.Get(ctx, docstore.Users, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user, err := codec.DecodeUser(doc)
	if err != nil {
		return nil, err
	}

	user.IsCurrentUser = sess.Valid() && sess.UserID == uid
	if sess.Valid() && !user.IsCurrentUser {
		followed, err := s.IsFollowing(ctx, sess, uid)
		if err == nil {
			user.IsFollowed = followed
		}
	}
	return user, nil
}

// FetchUserByUsername queries the directory by username. Usernames are
// lowercased at write time, so the lookup lowercases too. This is the profile
// view, so the follow-graph stats come along.
func (s *UserService) FetchUserByUsername(ctx context.Context, sess domain.Session, username string) (*domain.User, error) {
	docs, err := s.store.Query(ctx, docstore.Users, "username", strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}

	user, err := s.FetchUser(ctx, sess, docs[0].ID)
	if err != nil {
		return nil, err
	}
	stats, err := s.RelationStats(ctx, user.ID)
	if err == nil {
		user.Stats = stats
	}
	return user, nil
}

// ListUsers returns every user. Full scan, no pagination; undecodable
// records are skipped.
func (s *UserService) ListUsers(ctx context.Context, sess domain.Session) ([]*domain.User, error) {
	docs, err := s.store.List(ctx, docstore.Users, "", false)
	if err != nil {
		return nil, err
	}

	users := codec.DecodeUsers(docs)
	for _, u := range users {
		u.IsCurrentUser = sess.Valid() && sess.UserID == u.ID
	}
	return users, nil
}

// FollowUser writes both edge records for the session user and the target.
// Re-following is a no-op in effect (presence records are idempotent). A
// follow notification is dispatched to the target, fire-and-forget.
func (s *UserService) FollowUser(ctx context.Context, sess domain.Session, targetID string) error {
	if sess.UserID == targetID {
		return ErrSelfFollow
	}
	if _, err := s.store.Get(ctx, docstore.Users, targetID); errors.Is(err, docstore.ErrNotFound) {
		return ErrUserNotFound
	}

	if _, err := s.store.Set(ctx, docstore.UserFollowing(sess.UserID), targetID, map[string]any{}); err != nil {
		return fmt.Errorf("writing following edge: %w", err)
	}
	if _, err := s.store.Set(ctx, docstore.UserFollowers(targetID), sess.UserID, map[string]any{}); err != nil {
		return &PartialWriteError{
			Op:     "follow",
			Done:   []string{docstore.UserFollowing(sess.UserID)},
			Failed: docstore.UserFollowers(targetID),
			Err:    err,
		}
	}

	s.notifications.Dispatch(sess, targetID, domain.NotificationFollow, "")
	return nil
}

// UnfollowUser removes both edge records. Unfollowing someone not followed
// is a no-op.
func (s *UserService) UnfollowUser(ctx context.Context, sess domain.Session, targetID string) error {
	if err := s.store.Delete(ctx, docstore.UserFollowing(sess.UserID), targetID); err != nil {
		return fmt.Errorf("removing following edge: %w", err)
	}
	if err := s.store.Delete(ctx, docstore.UserFollowers(targetID), sess.UserID); err != nil {
		return &PartialWriteError{
			Op:     "unfollow",
			Done:   []string{docstore.UserFollowing(sess.UserID)},
			Failed: docstore.UserFollowers(targetID),
			Err:    err,
		}
	}
	return nil
}

// IsFollowing checks the session user's following-index for the target.
func (s *UserService) IsFollowing(ctx context.Context, sess domain.Session, targetID string) (bool, error) {
	_, err := s.store.Get(ctx, docstore.UserFollowing(sess.UserID), targetID)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RelationStats counts a user's following and followers. The two counts are
// independent reads; a concurrent follow can make the pair transiently
// inconsistent.
func (s *UserService) RelationStats(ctx context.Context, uid string) (*domain.RelationStats, error) {
	following, err := s.store.List(ctx, docstore.UserFollowing(uid), "", false)
	if err != nil {
		return nil, err
	}
	followers, err := s.store.List(ctx, docstore.UserFollowers(uid), "", false)
	if err != nil {
		return nil, err
	}
	return &domain.RelationStats{
		Following: len(following),
		Followers: len(followers),
	}, nil
}

type UpdateProfileInput struct {
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// UpdateProfile edits the session user's mutable fields and returns the
// refreshed user. The username is lowercased on the way in.
func (s *UserService) UpdateProfile(ctx context.Context, sess domain.Session, input UpdateProfileInput) (*domain.User, error) {
	fields := map[string]any{
		"fullname": input.Fullname,
		"username": strings.ToLower(input.Username),
		"bio":      input.Bio,
	}

	err := s.store.Update(ctx, docstore.Users, sess.UserID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return s.FetchUser(ctx, sess, sess.UserID)
}

// UpdateProfileImage uploads a replacement profile image and points the user
// document at it. The old object is left in place; nothing else references
// it.
func (s *UserService) UpdateProfileImage(ctx context.Context, sess domain.Session, image []byte) (*domain.User, error) {
	key := fmt.Sprintf("profile_image/%s.jpg", uuid.NewString())
	err := s.objects.Put(ctx, key, bytes.NewReader(image), int64(len(image)), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("uploading profile image: %w", err)
	}
	imageURL, err := s.objects.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolving profile image url: %w", err)
	}

	err = s.store.Update(ctx, docstore.Users, sess.UserID, map[string]any{"profileImageUrl": imageURL})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile image: %w", err)
	}
	return s.FetchUser(ctx, sess, sess.UserID)
}
