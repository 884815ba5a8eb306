package domain

import (
	"fmt"
	"unicode/utf16"
)

const avatarURLPattern = "https://picsum.photos/seed/%d/200"

// Identity is the authenticated user of a tab.
type Identity struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// CredentialEntry is one row of the credential store. Secrets are kept in plaintext.
type CredentialEntry struct {
	Username string
	Secret   string
}

// NewIdentity derives the avatar from the username so the same user keeps the same picture.
func NewIdentity(username string) Identity {
	return Identity{Username: username, AvatarURL: AvatarURL(username)}
}

// AvatarURL seeds the image service with the sum of the username's character codes.
// Character codes are UTF-16 units, as JavaScript's charCodeAt counts them.
func AvatarURL(username string) string {
	seed := 0
	for _, unit := range utf16.Encode([]rune(username)) {
		seed += int(unit)
	}
	return fmt.Sprintf(avatarURLPattern, seed)
}

// AppPhase is the session state: the login screen or the chat.
type AppPhase int

const (
	PhaseLoggedOut AppPhase = iota
	PhaseLoggedIn
)

func (p AppPhase) String() string {
	switch p {
	case PhaseLoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}
