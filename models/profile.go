package models

import "time"

type ProfilePutRequest struct {
	Summary string `json:"summary"`
}

type Profile struct {
	User          string    `json:"user"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}
