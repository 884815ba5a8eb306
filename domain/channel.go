package domain

import (
	"time"

	"github.com/samber/lo"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

type ChannelID = string

// Channel is static configuration, users cannot create channels.
type Channel struct {
	ID          ChannelID
	DisplayName string
	Description string
	Visibility  Visibility
}

const (
	DefaultChannelID   ChannelID = "minecraft"
	AssistantChannelID ChannelID = "ai-chat"

	ServerName      = "Servidor"
	ServerAvatarURL = "https://ui-avatars.com/api/?name=Server&background=10b981&color=fff"
	AssistantName   = "Asistente IA"
)

var channels = []Channel{
	{
		ID:          DefaultChannelID,
		DisplayName: "Los jugadores de Minecraft",
		Description: "Chat Global de Minecraft en Tiempo Real",
		Visibility:  Public,
	},
}

// Channels returns the catalogue in display order.
func Channels() []Channel {
	return append([]Channel(nil), channels...)
}

// FindChannel looks a channel up by ID.
func FindChannel(id ChannelID) (Channel, bool) {
	return lo.Find(channels, func(c Channel) bool { return c.ID == id })
}

// WelcomeMessage is the system message every freshly opened room starts with.
func WelcomeMessage(at time.Time) ChatMessage {
	return ChatMessage{
		ID:         "sys-1",
		ChannelID:  DefaultChannelID,
		Text:       "¡Bienvenidos al servidor! Este chat es en tiempo real entre todos los usuarios conectados.",
		SenderName: ServerName,
		AvatarURL:  ServerAvatarURL,
		Timestamp:  at,
	}
}
