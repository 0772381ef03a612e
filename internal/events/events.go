// Package events publishes domain events to the message bus.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const Source = "lms-service"

// Event types
const (
	UserRegistered         = "user.registered"
	PasswordResetRequested = "password_reset.requested"
	PasswordResetCompleted = "password_reset.completed"
	CourseCreated          = "course.created"
	CoursePublished        = "course.published"
	EnrollmentCreated      = "enrollment.created"
)

// Event is the envelope written to the bus
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewEvent stamps a new event of eventType
func NewEvent(eventType string, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher sends events to subscribers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
