package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type MeetingPayload struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Link  string `json:"link"`
}

type MediaPayload struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Message rows are append-only.
type Message struct {
	BaseModel
	BarterID         string         `gorm:"type:varchar(36);index;not null" json:"barter_id"`
	SenderID         string         `gorm:"type:varchar(36);index;not null" json:"sender_id"`
	Content          string         `gorm:"type:text" json:"content"`
	MessageType      MessageType    `gorm:"type:varchar(10);not null;default:'text'" json:"message_type"`
	ScheduledMeeting datatypes.JSON `json:"scheduled_meeting,omitempty"`
	Media            datatypes.JSON `json:"media,omitempty"`
}

func (m *Message) GetMeeting() *MeetingPayload {
	if len(m.ScheduledMeeting) == 0 {
		return nil
	}
	var meeting MeetingPayload
	if err := json.Unmarshal(m.ScheduledMeeting, &meeting); err != nil {
		return nil
	}
	return &meeting
}

func (m *Message) SetMeeting(meeting *MeetingPayload) {
	if meeting == nil {
		m.ScheduledMeeting = nil
		return
	}
	data, _ := json.Marshal(meeting)
	m.ScheduledMeeting = datatypes.JSON(data)
}

func (m *Message) GetMedia() *MediaPayload {
	if len(m.Media) == 0 {
		return nil
	}
	var media MediaPayload
	if err := json.Unmarshal(m.Media, &media); err != nil {
		return nil
	}
	return &media
}

func (m *Message) SetMedia(media *MediaPayload) {
	if media == nil {
		m.Media = nil
		return
	}
	data, _ := json.Marshal(media)
	m.Media = datatypes.JSON(data)
}

// HasBody is the minimum content rule: text or a payload, never neither.
func (m *Message) HasBody() bool {
	return m.Content != "" || len(m.ScheduledMeeting) > 0 || len(m.Media) > 0
}
