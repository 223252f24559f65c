package models

import "time"

type Event struct {
	ID             int32     `json:"id"`
	Title          string    `json:"title"`
	Organizer      string    `json:"organizer"`
	EventDate      string    `json:"event_date"`
	EventTime      string    `json:"event_time"`
	Location       string    `json:"location"`
	ImageURL       string    `json:"image_url,omitempty"`
	IsPaid         bool      `json:"is_paid"`
	CreatedByEmail string    `json:"created_by_email"`
	CreatedAt      time.Time `json:"created_at"`
}
