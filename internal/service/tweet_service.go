package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mwalczyk/chirp/internal/codec"
	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
)

var (
	ErrTweetNotFound  = errors.New("tweet not found")
	ErrNotTweetAuthor = errors.New("only the author can delete a tweet")
)

// TweetService handles tweet creation, reply threading, like toggling and
// the listings built from the pointer indexes. Every multi-location write is
// sequential and best-effort; partial failures surface as PartialWriteError
// and are never rolled back.
type TweetService struct {
	store         docstore.Store
	users         *UserService
	notifications *NotificationService
}

func NewTweetService(store docstore.Store, users *UserService, notifications *NotificationService) *TweetService {
	return &TweetService{
		store:         store,
		users:         users,
		notifications: notifications,
	}
}

// CreateTweet writes the primary tweet record, then the pointer under the
// author's tweet index. If the pointer write fails the tweet exists but is
// invisible in the author's own listing; the returned tweet is non-nil
// alongside the PartialWriteError so the caller can see both.
func (s *TweetService) CreateTweet(ctx context.Context, sess domain.Session, caption string) (*domain.Tweet, error) {
	tweet := &domain.Tweet{
		AuthorID:  sess.UserID,
		Caption:   caption,
		Timestamp: time.Now().UTC(),
	}

	id, err := s.store.Set(ctx, docstore.Tweets, "", codec.EncodeTweet(tweet))
	if err != nil {
		return nil, fmt.Errorf("writing tweet: %w", err)
	}
	tweet.ID = id

	if _, err := s.store.Set(ctx, docstore.UserTweets(sess.UserID), id, map[string]any{}); err != nil {
		return tweet, &PartialWriteError{
			Op:     "create tweet",
			Done:   []string{docstore.Tweets},
			Failed: docstore.UserTweets(sess.UserID),
			Err:    err,
		}
	}
	return tweet, nil
}

// CreateReply stores a reply under the parent's reply subcollection with a
// replyingTo snapshot of the parent author's username, then writes the
// reverse-lookup pointer in the global replies index. The parent author gets
// a reply notification.
func (s *TweetService) CreateReply(ctx context.Context, sess domain.Session, parentID, caption string) (*domain.Tweet, error) {
	parent, err := s.fetchTweetRecord(ctx, parentID)
	if err != nil {
		return nil, err
	}
	parentAuthor, err := s.users.FetchUser(ctx, sess, parent.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("resolving parent author: %w", err)
	}

	reply := &domain.Tweet{
		AuthorID:   sess.UserID,
		Caption:    caption,
		Timestamp:  time.Now().UTC(),
		ReplyingTo: parentAuthor.Username,
	}

	replyID, err := s.store.Set(ctx, docstore.TweetReplies(parentID), "", codec.EncodeTweet(reply))
	if err != nil {
		return nil, fmt.Errorf("writing reply: %w", err)
	}
	reply.ID = replyID

	pointer := &domain.ReplyPointer{TweetID: parentID, ReplyID: replyID, AuthorID: sess.UserID}
	if _, err := s.store.Set(ctx, docstore.GlobalReplies, "", codec.EncodeReplyPointer(pointer)); err != nil {
		return reply, &PartialWriteError{
			Op:     "create reply",
			Done:   []string{docstore.TweetReplies(parentID)},
			Failed: docstore.GlobalReplies,
			Err:    err,
		}
	}

	s.notifications.Dispatch(sess, parent.AuthorID, domain.NotificationReply, parentID)
	return reply, nil
}

// FetchTweet loads a tweet with its author resolved and the viewer's like
// state filled in.
func (s *TweetService) FetchTweet(ctx context.Context, sess domain.Session, id string) (*domain.Tweet, error) {
	tweet, err := s.fetchTweetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, sess, tweet)
}

// FetchAllTweets returns every tweet in the global collection, newest first,
// with authors resolved. Tweets whose author cannot be loaded are dropped.
func (s *TweetService) FetchAllTweets(ctx context.Context, sess domain.Session) ([]*domain.Tweet, error) {
	docs, err := s.store.List(ctx, docstore.Tweets, "timestamp", true)
	if err != nil {
		return nil, err
	}
	return s.assembleAll(ctx, sess, codec.DecodeTweets(docs)), nil
}

// FetchTweetsByAuthor resolves the author's tweet-pointer index and fetches
// each tweet individually, newest first. Pointers whose tweet is missing are
// skipped.
func (s *TweetService) FetchTweetsByAuthor(ctx context.Context, sess domain.Session, uid string) ([]*domain.Tweet, error) {
	pointers, err := s.store.List(ctx, docstore.UserTweets(uid), "", false)
	if err != nil {
		return nil, err
	}

	tweets := make([]*domain.Tweet, 0, len(pointers))
	for _, ptr := range pointers {
		tweet, err := s.FetchTweet(ctx, sess, ptr.ID)
		if err != nil {
			continue
		}
		tweets = append(tweets, tweet)
	}
	sortNewestFirst(tweets)
	return tweets, nil
}

// FetchReplies returns the replies under a tweet, newest first, with authors
// resolved.
func (s *TweetService) FetchReplies(ctx context.Context, sess domain.Session, parentID string) ([]*domain.Tweet, error) {
	docs, err := s.store.List(ctx, docstore.TweetReplies(parentID), "timestamp", true)
	if err != nil {
		return nil, err
	}
	return s.assembleAll(ctx, sess, codec.DecodeTweets(docs)), nil
}

// FetchRepliesByAuthor walks the global reverse index and loads each reply
// from its parent's subcollection.
func (s *TweetService) FetchRepliesByAuthor(ctx context.Context, sess domain.Session, uid string) ([]*domain.Tweet, error) {
	docs, err := s.store.Query(ctx, docstore.GlobalReplies, "uid", uid)
	if err != nil {
		return nil, err
	}

	replies := make([]*domain.Tweet, 0, len(docs))
	for _, doc := range docs {
		ptr, err := codec.DecodeReplyPointer(doc)
		if err != nil {
			continue
		}
		replyDoc, err := s.store.Get(ctx, docstore.TweetReplies(ptr.TweetID), ptr.ReplyID)
		if err != nil {
			continue
		}
		reply, err := codec.DecodeTweet(replyDoc)
		if err != nil {
			continue
		}
		assembled, err := s.assemble(ctx, sess, reply)
		if err != nil {
			continue
		}
		replies = append(replies, assembled)
	}
	sortNewestFirst(replies)
	return replies, nil
}

// FetchLikedTweets lists the tweets in a user's like-index, each marked
// liked, newest first.
func (s *TweetService) FetchLikedTweets(ctx context.Context, sess domain.Session, uid string) ([]*domain.Tweet, error) {
	markers, err := s.store.List(ctx, docstore.UserLikes(uid), "", false)
	if err != nil {
		return nil, err
	}

	tweets := make([]*domain.Tweet, 0, len(markers))
	for _, marker := range markers {
		tweet, err := s.FetchTweet(ctx, sess, marker.ID)
		if err != nil {
			continue
		}
		tweet.IsLiked = true
		tweets = append(tweets, tweet)
	}
	sortNewestFirst(tweets)
	return tweets, nil
}

// ToggleLike flips the session user's like on a tweet. The counter update is
// issued before the two like markers, so a marker failure leaves counter and
// markers diverged (surfaced as PartialWriteError, not rolled back). A
// notification goes out on like transitions only. The counter never drops
// below zero.
func (s *TweetService) ToggleLike(ctx context.Context, sess domain.Session, id string) (*domain.Tweet, error) {
	tweet, err := s.FetchTweet(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	likes := tweet.Likes
	if tweet.IsLiked {
		likes--
		if likes < 0 {
			likes = 0
		}
	} else {
		likes++
	}

	if err := s.store.Update(ctx, docstore.Tweets, id, map[string]any{"likes": likes}); err != nil {
		return nil, fmt.Errorf("updating like count: %w", err)
	}

	counterDone := []string{docstore.Tweets + " counter"}
	if tweet.IsLiked {
		if err := s.store.Delete(ctx, docstore.TweetLikes(id), sess.UserID); err != nil {
			return nil, &PartialWriteError{Op: "unlike", Done: counterDone, Failed: docstore.TweetLikes(id), Err: err}
		}
		if err := s.store.Delete(ctx, docstore.UserLikes(sess.UserID), id); err != nil {
			return nil, &PartialWriteError{
				Op:     "unlike",
				Done:   append(counterDone, docstore.TweetLikes(id)),
				Failed: docstore.UserLikes(sess.UserID),
				Err:    err,
			}
		}
	} else {
		if _, err := s.store.Set(ctx, docstore.TweetLikes(id), sess.UserID, map[string]any{}); err != nil {
			return nil, &PartialWriteError{Op: "like", Done: counterDone, Failed: docstore.TweetLikes(id), Err: err}
		}
		if _, err := s.store.Set(ctx, docstore.UserLikes(sess.UserID), id, map[string]any{}); err != nil {
			return nil, &PartialWriteError{
				Op:     "like",
				Done:   append(counterDone, docstore.TweetLikes(id)),
				Failed: docstore.UserLikes(sess.UserID),
				Err:    err,
			}
		}
		s.notifications.Dispatch(sess, tweet.AuthorID, domain.NotificationLike, id)
	}

	tweet.Likes = likes
	tweet.IsLiked = !tweet.IsLiked
	return tweet, nil
}

// DeleteTweet removes the primary record and the author's pointer. Replies,
// like markers and notifications referencing the tweet are left behind;
// stale indexes are an accepted consequence of the fan-out model.
func (s *TweetService) DeleteTweet(ctx context.Context, sess domain.Session, id string) error {
	tweet, err := s.fetchTweetRecord(ctx, id)
	if err != nil {
		return err
	}
	if tweet.AuthorID != sess.UserID {
		return ErrNotTweetAuthor
	}

	if err := s.store.Delete(ctx, docstore.Tweets, id); err != nil {
		return fmt.Errorf("deleting tweet: %w", err)
	}
	if err := s.store.Delete(ctx, docstore.UserTweets(tweet.AuthorID), id); err != nil {
		return &PartialWriteError{
			Op:     "delete tweet",
			Done:   []string{docstore.Tweets},
			Failed: docstore.UserTweets(tweet.AuthorID),
			Err:    err,
		}
	}
	return nil
}

// IsLiked checks the tweet's like-index for the session user.
func (s *TweetService) IsLiked(ctx context.Context, sess domain.Session, id string) (bool, error) {
	_, err := s.store.Get(ctx, docstore.TweetLikes(id), sess.UserID)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *TweetService) fetchTweetRecord(ctx context.Context, id string) (*domain.Tweet, error) {
	doc, err := s.store.Get(ctx, docstore.Tweets, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrTweetNotFound
	}
	if err != nil {
		return nil, err
	}
	return codec.DecodeTweet(doc)
}

// assemble attaches the author and the viewer's like state to a decoded
// tweet.
func (s *TweetService) assemble(ctx context.Context, sess domain.Session, tweet *domain.Tweet) (*domain.Tweet, error) {
	user, err := s.users.FetchUser(ctx, sess, tweet.AuthorID)
	if err != nil {
		return nil, err
	}
	tweet.User = user

	if sess.Valid() {
		liked, err := s.IsLiked(ctx, sess, tweet.ID)
		if err == nil {
			tweet.IsLiked = liked
		}
	}
	return tweet, nil
}

func (s *TweetService) assembleAll(ctx context.Context, sess domain.Session, tweets []*domain.Tweet) []*domain.Tweet {
	out := make([]*domain.Tweet, 0, len(tweets))
	for _, tweet := range tweets {
		assembled, err := s.assemble(ctx, sess, tweet)
		if err != nil {
			continue
		}
		out = append(out, assembled)
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(tweets []*domain.Tweet) {
	sort.SliceStable(tweets, func(i, j int) bool {
		return tweets[i].Timestamp.After(tweets[j].Timestamp)
	})
}
