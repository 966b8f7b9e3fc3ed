package models

import "time"

// Response views are the denormalized shapes the API returns: bookings carry
// item and booker snapshots instead of bare foreign keys, items carry their
// last/next bookings and comments.

type UserShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ItemShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingView struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Booker UserShort `json:"booker"`
	Item   ItemShort `json:"item"`
}

// BookingRef is the compact booking shape embedded in item views.
type BookingRef struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"request_id,omitempty"`
	LastBooking *BookingRef   `json:"last_booking"`
	NextBooking *BookingRef   `json:"next_booking"`
	Comments    []CommentView `json:"comments"`
}

type RequestView struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []Item    `json:"items"`
}
