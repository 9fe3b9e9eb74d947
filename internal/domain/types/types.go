// Package types contains common types used across the application
package types

// RecordView is the externally visible shape of a play record.
// The row id and captured IP stay internal.
type RecordView struct {
	Username    string `json:"username"`
	Agent       string `json:"agent"`
	Prize       int    `json:"prize"`
	Date        string `json:"date"`
	IsScratched bool   `json:"is_scratched"`
	IsClaimed   bool   `json:"is_claimed"`
}

// Point is a single scratch sample on the card surface.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SessionView describes a session's current game state.
type SessionView struct {
	Token    string     `json:"token"`
	State    string     `json:"state"`
	Outcome  string     `json:"outcome"`
	Coverage float64    `json:"coverage"`
	SharedIP bool       `json:"shared_ip"`
	Record   RecordView `json:"record"`
}
