package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type ScheduleMeetingRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	// Date is YYYY-MM-DD and Time is HH:MM, both in UTC.
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

type MeetingDTO struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Link  string `json:"link"`
}

type MediaDTO struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type MessageResponse struct {
	ID               string      `json:"id"`
	BarterID         string      `json:"barter_id"`
	SenderID         string      `json:"sender_id"`
	Content          string      `json:"content"`
	MessageType      string      `json:"message_type"`
	ScheduledMeeting *MeetingDTO `json:"scheduled_meeting,omitempty"`
	Media            *MediaDTO   `json:"media,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
