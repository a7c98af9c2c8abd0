package events

import "github.com/google/uuid"

// CreateEventRequest is the payload for organizing an event.
type CreateEventRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Sport           string     `json:"sport"`
	Location        string     `json:"location"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	MaxParticipants int        `json:"max_participants"`
	FieldID         *uuid.UUID `json:"field_id,omitempty"`
}

// JoinEventRequest is the payload for attending an event.
type JoinEventRequest struct {
	Notes string `json:"notes"`
}

// ListEventsRequest narrows and paginates the event listing.
type ListEventsRequest struct {
	Sport string
	Date  string
	Page  int
	Limit int
}

// ListEventsResponse is one page of events.
type ListEventsResponse struct {
	Events []EventSummary `json:"events"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// EventSummary is a listing row with its attendance count.
type EventSummary struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Sport            string    `json:"sport"`
	Location         string    `json:"location"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	MaxParticipants  int       `json:"max_participants"`
	ParticipantCount int       `json:"participant_count"`
	OrganizerID      uuid.UUID `json:"organizer_id"`
}
