package model

import "time"

// User is the owner of ingested emails and service links.
type User struct {
	ID        int64
	Email     string
	Nickname  string
	CreatedAt time.Time
}
