// Package codec converts between raw store documents and typed entities.
// Decoding tolerates missing optional fields by substituting defaults and
// rejects documents missing required ones. The batch helpers skip records
// that fail to decode instead of aborting the whole listing.
package codec

import (
	"fmt"
	"time"

	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/domain"
)

// wireTimeLayout is RFC 3339 with fixed-width fractional seconds so that
// stored timestamps order correctly as plain text.
const wireTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DecodeError reports a malformed document field.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

func missing(field string) error {
	return &DecodeError{Field: field, Reason: "required field missing"}
}

// DecodeUser builds a User from a raw document. The id comes from the store,
// not the document body. Bio and the profile image URL default to empty.
func DecodeUser(doc docstore.Document) (*domain.User, error) {
	email, ok := stringField(doc.Fields, "email")
	if !ok {
		return nil, missing("email")
	}
	username, ok := stringField(doc.Fields, "username")
	if !ok {
		return nil, missing("username")
	}
	fullname, ok := stringField(doc.Fields, "fullname")
	if !ok {
		return nil, missing("fullname")
	}

	imageURL, _ := stringField(doc.Fields, "profileImageUrl")
	bio, _ := stringField(doc.Fields, "bio")

	return &domain.User{
		ID:              doc.ID,
		Email:           email,
		Username:        username,
		Fullname:        fullname,
		ProfileImageURL: imageURL,
		Bio:             bio,
	}, nil
}

func EncodeUser(u *domain.User) map[string]any {
	fields := map[string]any{
		"email":           u.Email,
		"username":        u.Username,
		"fullname":        u.Fullname,
		"profileImageUrl": u.ProfileImageURL,
	}
	if u.Bio != "" {
		fields["bio"] = u.Bio
	}
	return fields
}

// DecodeTweet builds a Tweet from a raw document. Counters default to zero
// and replyingTo to empty; author, caption and timestamp are required.
func DecodeTweet(doc docstore.Document) (*domain.Tweet, error) {
	uid, ok := stringField(doc.Fields, "uid")
	if !ok {
		return nil, missing("uid")
	}
	caption, ok := stringField(doc.Fields, "caption")
	if !ok {
		return nil, missing("caption")
	}
	ts, ok := timeField(doc.Fields, "timestamp")
	if !ok {
		return nil, missing("timestamp")
	}

	likes, _ := intField(doc.Fields, "likes")
	retweets, _ := intField(doc.Fields, "retweets")
	replyingTo, _ := stringField(doc.Fields, "replyingTo")

	return &domain.Tweet{
		ID:         doc.ID,
		AuthorID:   uid,
		Caption:    caption,
		Timestamp:  ts,
		Likes:      likes,
		Retweets:   retweets,
		ReplyingTo: replyingTo,
	}, nil
}

func EncodeTweet(t *domain.Tweet) map[string]any {
	fields := map[string]any{
		"uid":       t.AuthorID,
		"caption":   t.Caption,
		"timestamp": t.Timestamp.UTC().Format(wireTimeLayout),
		"likes":     t.Likes,
		"retweets":  t.Retweets,
	}
	if t.ReplyingTo != "" {
		fields["replyingTo"] = t.ReplyingTo
	}
	return fields
}

// DecodeNotification builds a Notification from a raw document. The related
// tweet id is optional.
func DecodeNotification(doc docstore.Document) (*domain.Notification, error) {
	uid, ok := stringField(doc.Fields, "uid")
	if !ok {
		return nil, missing("uid")
	}
	typ, ok := intField(doc.Fields, "type")
	if !ok {
		return nil, missing("type")
	}
	ts, ok := timeField(doc.Fields, "timestamp")
	if !ok {
		return nil, missing("timestamp")
	}

	tweetID, _ := stringField(doc.Fields, "tweetId")

	return &domain.Notification{
		ID:        doc.ID,
		ActorID:   uid,
		TweetID:   tweetID,
		Type:      domain.NotificationType(typ),
		Timestamp: ts,
	}, nil
}

func EncodeNotification(n *domain.Notification) map[string]any {
	fields := map[string]any{
		"uid":       n.ActorID,
		"type":      int(n.Type),
		"timestamp": n.Timestamp.UTC().Format(wireTimeLayout),
	}
	if n.TweetID != "" {
		fields["tweetId"] = n.TweetID
	}
	return fields
}

// DecodeReplyPointer builds a reply reverse-index pointer; all three fields
// are required.
func DecodeReplyPointer(doc docstore.Document) (*domain.ReplyPointer, error) {
	tweetID, ok := stringField(doc.Fields, "tweetId")
	if !ok {
		return nil, missing("tweetId")
	}
	replyID, ok := stringField(doc.Fields, "tweetReplyId")
	if !ok {
		return nil, missing("tweetReplyId")
	}
	uid, ok := stringField(doc.Fields, "uid")
	if !ok {
		return nil, missing("uid")
	}

	return &domain.ReplyPointer{TweetID: tweetID, ReplyID: replyID, AuthorID: uid}, nil
}

func EncodeReplyPointer(p *domain.ReplyPointer) map[string]any {
	return map[string]any{
		"tweetId":      p.TweetID,
		"tweetReplyId": p.ReplyID,
		"uid":          p.AuthorID,
	}
}

// DecodeTweets decodes a batch, dropping records that fail to decode.
func DecodeTweets(docs []docstore.Document) []*domain.Tweet {
	tweets := make([]*domain.Tweet, 0, len(docs))
	for _, doc := range docs {
		t, err := DecodeTweet(doc)
		if err != nil {
			continue
		}
		tweets = append(tweets, t)
	}
	return tweets
}

// DecodeUsers decodes a batch, dropping records that fail to decode.
func DecodeUsers(docs []docstore.Document) []*domain.User {
	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		u, err := DecodeUser(doc)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users
}

func stringField(fields map[string]any, name string) (string, bool) {
	s, ok := fields[name].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func intField(fields map[string]any, name string) (int, bool) {
	switch n := fields[name].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// timeField accepts native time values, RFC 3339 strings (the canonical wire
// form) and legacy integer unix seconds left over from an earlier schema.
func timeField(fields map[string]any, name string) (time.Time, bool) {
	switch v := fields[name].(type) {
	case time.Time:
		return v, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	case int:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
