package events

import "time"

// Event types
const (
	UserRegistered = "user.registered"
	OTPIssued      = "otp.issued"

	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// Stream names
const (
	UserEventsStream    = "user.events"
	ProductEventsStream = "product.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events
type UserRegisteredEvent struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// OTPIssuedEvent carries the code to the notifier that delivers it.
type OTPIssuedEvent struct {
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Code        string    `json:"code"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Product events
type ProductEvent struct {
	ProductID uint  `json:"productId"`
	ActorID   *uint `json:"actorId,omitempty"`
}
