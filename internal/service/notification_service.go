package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/mwalczyk/chirp/internal/codec"
	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
)

const dispatchTimeout = 10 * time.Second

// Pusher delivers a freshly stored notification to the recipient if they are
// connected. Best-effort; delivery is never required.
type Pusher interface {
	PushNotification(recipientID string, n *domain.Notification)
}

// NotificationService appends notification records as a side effect of
// social actions and reassembles them with denormalized actor info.
type NotificationService struct {
	store  docstore.Store
	pusher Pusher
}

func NewNotificationService(store docstore.Store, pusher Pusher) *NotificationService {
	return &NotificationService{
		store:  store,
		pusher: pusher,
	}
}

// Dispatch appends a notification under the recipient's index with the
// session user as actor. The write runs in the background: the triggering
// action never waits on it or fails because of it. The returned channel
// receives the outcome exactly once for callers who want to observe it.
func (s *NotificationService) Dispatch(sess domain.Session, recipientID string, typ domain.NotificationType, tweetID string) <-chan error {
	done := make(chan error, 1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		n := &domain.Notification{
			ActorID:   sess.UserID,
			TweetID:   tweetID,
			Type:      typ,
			Timestamp: time.Now().UTC(),
		}

		id, err := s.store.Set(ctx, docstore.UserNotifications(recipientID), "", codec.EncodeNotification(n))
		if err != nil {
			slog.Warn("notification write failed",
				"recipient", recipientID, "type", typ.String(), "error", err)
			done <- err
			return
		}

		n.ID = id
		if s.pusher != nil {
			s.pusher.PushNotification(recipientID, n)
		}
		done <- nil
	}()

	return done
}

// Fetch returns the session user's notifications sorted newest first, each
// with its actor resolved. Records whose actor cannot be loaded, or that
// fail to decode, are dropped. No notifications is an empty list, not an
// error.
func (s *NotificationService) Fetch(ctx context.Context, sess domain.Session) ([]*domain.Notification, error) {
	docs, err := s.store.List(ctx, docstore.UserNotifications(sess.UserID), "timestamp", true)
	if err != nil {
		return nil, err
	}

	notifications := make([]*domain.Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := codec.DecodeNotification(doc)
		if err != nil {
			continue
		}

		actor, err := s.fetchActor(ctx, n.ActorID)
		if err != nil {
			continue
		}
		if n.Type == domain.NotificationFollow {
			actor.IsFollowed = s.isFollowing(ctx, sess, n.ActorID)
		}
		n.Actor = actor

		notifications = append(notifications, n)
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})
	return notifications, nil
}

func (s *NotificationService) fetchActor(ctx context.Context, uid string) (*domain.User, error) {
	doc, err := s.store.Get(ctx, docstore.Users, uid)
	if err != nil {
		return nil, err
	}
	return codec.DecodeUser(doc)
}

func (s *NotificationService) isFollowing(ctx context.Context, sess domain.Session, uid string) bool {
	_, err := s.store.Get(ctx, docstore.UserFollowing(sess.UserID), uid)
	return !errors.Is(err, docstore.ErrNotFound) && err == nil
}
