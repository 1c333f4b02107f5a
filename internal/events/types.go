package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const EventTypeLogin EventType = "login"

// Event is the JSON payload carried in the body of each published message
type Event struct {
	Id        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Login     *Login    `json:"login,omitempty"`
}

// Login describes a successful authentication
type Login struct {
	Provider string   `json:"provider"`
	UserId   string   `json:"userId"`
	Username string   `json:"username,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}
