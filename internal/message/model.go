// Package message stores buyer/seller messages about listings.
package message

import (
	"sort"
	"time"
)

// Message is a directed note from one user to another about a listing.
type Message struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	PropertyID int64     `json:"propertyId"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage is the input for sending a message.
type NewMessage struct {
	ToUserID   string `json:"toUserId" validate:"required,max=128"`
	PropertyID int64  `json:"propertyId" validate:"gt=0"`
	Message    string `json:"message" validate:"required,max=5000"`
}

// Summary describes one conversation from a caller's point of view.
type Summary struct {
	CounterpartID  string    `json:"counterpartId"`
	PropertyID     int64     `json:"propertyId"`
	LastMessage    string    `json:"lastMessage"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	UnreadCount    int       `json:"unreadCount"`
	MessageCount   int       `json:"messageCount"`
	LastFromCaller bool      `json:"lastFromCaller"`
}

type conversationKey struct {
	counterpart string
	propertyID  int64
}

// Summaries groups msgs into conversations keyed by (counterpart, property),
// most recently active first. Unread counts only include messages to callerID.
func Summaries(callerID string, msgs []*Message) []Summary {
	byKey := map[conversationKey]*Summary{}
	for _, m := range msgs {
		counterpart := m.ToUserID
		if m.ToUserID == callerID {
			counterpart = m.FromUserID
		}
		key := conversationKey{counterpart, m.PropertyID}

		s, ok := byKey[key]
		if !ok {
			s = &Summary{CounterpartID: counterpart, PropertyID: m.PropertyID}
			byKey[key] = s
		}
		s.MessageCount++
		if m.ToUserID == callerID && !m.IsRead {
			s.UnreadCount++
		}
		if m.CreatedAt.After(s.LastMessageAt) || s.MessageCount == 1 {
			s.LastMessage = m.Message
			s.LastMessageAt = m.CreatedAt
			s.LastFromCaller = m.FromUserID == callerID
		}
	}

	out := make([]Summary, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		if out[i].PropertyID != out[j].PropertyID {
			return out[i].PropertyID < out[j].PropertyID
		}
		return out[i].CounterpartID < out[j].CounterpartID
	})
	return out
}
