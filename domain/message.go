// Package domain contains core concepts of the chat system.
// This file defines ChatMessage and the rules around its identity.
// Messages are append-only; only an in-flight assistant answer is rewritten.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the JSON shape replicated between tabs.
type ChatMessage struct {
	ID            string    `json:"id"`
	ChannelID     string    `json:"channelId"`
	Text          string    `json:"text"`
	SenderName    string    `json:"sender"`
	SenderIsLocal bool      `json:"isUser"`
	AvatarURL     string    `json:"avatar,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	IsStreaming   bool      `json:"isTyping,omitempty"`
}

// NewMessageID builds an ID from the millisecond timestamp and a random suffix.
// No collision check is made across tabs.
func NewMessageID(at time.Time) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), uuid.NewString())
}

// AsRemote returns the copy other tabs receive: same content, rendered as someone else's.
func (m ChatMessage) AsRemote() ChatMessage {
	m.SenderIsLocal = false
	return m
}
