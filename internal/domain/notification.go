package domain

import "time"

// NotificationType enumerates the social actions that produce notifications.
// The wire encoding is the integer value.
type NotificationType int

const (
	NotificationFollow NotificationType = iota
	NotificationLike
	NotificationReply
	NotificationRetweet
	NotificationMention
)

func (t NotificationType) String() string {
	switch t {
	case NotificationFollow:
		return "follow"
	case NotificationLike:
		return "like"
	case NotificationReply:
		return "reply"
	case NotificationRetweet:
		return "retweet"
	case NotificationMention:
		return "mention"
	default:
		return "unknown"
	}
}

// Notification is stored under the recipient's namespace. Actor is resolved
// by a follow-up fetch and never stored.
type Notification struct {
	ID        string           `json:"id"`
	ActorID   string           `json:"uid"`
	TweetID   string           `json:"tweet_id,omitempty"`
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`

	Actor *User `json:"actor,omitempty"`
}
