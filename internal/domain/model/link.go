package model

import "time"

// ServiceLink records that a user is a confirmed subscriber of a service,
// with provenance pointing at the email that proved it. At most one link
// exists per (UserID, ServiceID) pair.
type ServiceLink struct {
	ID               int64
	UserID           int64
	ServiceID        int64
	EmailID          int64 // Originating email; zero when provenance is unknown.
	SubscriptionDate time.Time
	Status           LinkStatus
}
