package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Profile is what a student tells the tutor about themselves.
type Profile struct {
	Name  string `json:"name"`
	Level string `json:"level"`
	Goal  string `json:"goal,omitempty"`
}

type ChatRole string

const (
	ChatUser  ChatRole = "user"
	ChatModel ChatRole = "model"
)

// ChatMessage is one turn of the tutor transcript.
type ChatMessage struct {
	Role ChatRole  `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"timestamp"`
}

// SimulatorPreset is a saved camera exposure triangle.
type SimulatorPreset struct {
	Aperture     float64 `json:"aperture"`
	ShutterSpeed string  `json:"shutterSpeed"`
	ISO          int     `json:"iso"`
}
