package models

import "time"

// Message is the stored message record. A nil ReadAt means unread; once set
// it never changes.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// Read reports whether the message has been read.
func (m *Message) Read() bool {
	return m.ReadAt != nil
}

// MessageDetail is a message with both participants expanded to their
// public profiles.
type MessageDetail struct {
	ID     int64         `json:"id"`
	Body   string        `json:"body"`
	SentAt time.Time     `json:"sent_at"`
	ReadAt *time.Time    `json:"read_at"`
	From   PublicProfile `json:"from_user"`
	To     PublicProfile `json:"to_user"`
}

// SentMessage is a listing item with the recipient expanded.
type SentMessage struct {
	ID     int64         `json:"id"`
	Body   string        `json:"body"`
	SentAt time.Time     `json:"sent_at"`
	ReadAt *time.Time    `json:"read_at"`
	To     PublicProfile `json:"to_user"`
}

// ReceivedMessage is a listing item with the sender expanded.
type ReceivedMessage struct {
	ID     int64         `json:"id"`
	Body   string        `json:"body"`
	SentAt time.Time     `json:"sent_at"`
	ReadAt *time.Time    `json:"read_at"`
	From   PublicProfile `json:"from_user"`
}
