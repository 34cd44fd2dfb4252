package model

import "time"

// DeviceToken is a push registration token for one of a user's devices.
// Created by the client registration flow; deleted here when the push
// provider reports the token invalid or unregistered.
type DeviceToken struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
