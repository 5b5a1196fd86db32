package services

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barterly/internal/models"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formFile builds a real multipart file header around content.
func formFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// zipBytes is a minimal Office Open XML container.
func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// oleBytes starts with the compound file signature of legacy Office files.
func oleBytes() []byte {
	return append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 504)...)
}

func TestChatRequiresAcceptedParticipant(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	carol := env.seedMember(t, member{Name: "Carol"})
	chat := env.svc.ChatService

	pending, err := env.svc.BarterService.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: bob})
	require.NoError(t, err)

	_, err = chat.SendText(env.db, alice, pending.ID, "hello")
	assert.ErrorIs(t, err, apperrors.ErrMessagingNotAllowed)

	// Participants may still open the room of a pending barter.
	assert.NoError(t, chat.CanJoinBarter(env.db, bob, pending.ID))
	assert.ErrorIs(t, chat.CanJoinBarter(env.db, carol, pending.ID), apperrors.ErrNotBarterParticipant)

	barterID := env.acceptedBarter(t, alice, bob)

	_, err = chat.SendText(env.db, carol, barterID, "let me in")
	assert.ErrorIs(t, err, apperrors.ErrNotBarterParticipant)

	_, err = chat.SendText(env.db, alice, barterID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)

	_, err = chat.GetMessages(env.db, carol, barterID)
	assert.ErrorIs(t, err, apperrors.ErrNotBarterParticipant)
}

func TestSendTextPublishesToRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	barterID := env.acceptedBarter(t, alice, bob)
	env.realtime.reset()

	msg, err := env.svc.ChatService.SendText(env.db, alice, barterID, "  See you at 5  ")
	require.NoError(t, err)
	assert.Equal(t, "See you at 5", msg.Content)
	assert.Equal(t, string(models.MessageTypeText), msg.MessageType)

	events := env.realtime.ofType(ws.EventMessageCreated)
	require.Len(t, events, 1)
	assert.Equal(t, ws.TargetRoom, events[0].Target)
	assert.Equal(t, barterID, events[0].Key)
	assert.Equal(t, msg.ID, events[0].DedupeID)

	sent := env.mailer.Sent()
	assert.Equal(t, "New message from Alice", sent[len(sent)-1].Subject)

	history, err := env.svc.ChatService.GetMessages(env.db, bob, barterID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
}

func TestScheduleMeeting(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	barterID := env.acceptedBarter(t, alice, bob)

	chat := env.svc.ChatService.(*chatService)
	chat.now = func() time.Time { return time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC) }

	t.Run("past meeting inserts nothing", func(t *testing.T) {
		_, err := chat.ScheduleMeeting(env.db, alice, barterID, &dto.ScheduleMeetingRequest{
			Title: "Guitar basics", Date: "2030-06-01", Time: "11:59",
		})
		assert.ErrorIs(t, err, apperrors.ErrMeetingInPast)

		_, err = chat.ScheduleMeeting(env.db, alice, barterID, &dto.ScheduleMeetingRequest{
			Title: "Guitar basics", Date: "2030-06-01", Time: "12:00",
		})
		assert.ErrorIs(t, err, apperrors.ErrMeetingInPast)

		history, err := chat.GetMessages(env.db, alice, barterID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("malformed time", func(t *testing.T) {
		_, err := chat.ScheduleMeeting(env.db, alice, barterID, &dto.ScheduleMeetingRequest{
			Title: "Guitar basics", Date: "June 1st", Time: "noon",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidMeeting)
	})

	msg, err := chat.ScheduleMeeting(env.db, alice, barterID, &dto.ScheduleMeetingRequest{
		Title: "Guitar basics", Date: "2030-06-02", Time: "18:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meeting scheduled: Guitar basics", msg.Content)
	assert.Equal(t, string(models.MessageTypeMeeting), msg.MessageType)
	require.NotNil(t, msg.ScheduledMeeting)
	assert.Equal(t, "2030-06-02", msg.ScheduledMeeting.Date)
	assert.Equal(t, "18:30", msg.ScheduledMeeting.Time)

	require.True(t, strings.HasPrefix(msg.ScheduledMeeting.Link, meetingLinkBase))
	id := strings.TrimPrefix(msg.ScheduledMeeting.Link, meetingLinkBase)
	assert.Len(t, id, meetingIDLength)
	assert.Regexp(t, `^[0-9a-z]+$`, id)
}

func TestSendMediaRejectsOversizeBeforeStorage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	barterID := env.acceptedBarter(t, alice, bob)

	oversize := &multipart.FileHeader{Filename: "clip.png", Size: 10<<20 + 1}
	_, err := env.svc.ChatService.SendMedia(context.Background(), env.db, alice, barterID, "", oversize)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	objects, saves := env.store.count()
	assert.Zero(t, objects)
	assert.Zero(t, saves)

	history, err := env.svc.ChatService.GetMessages(env.db, alice, barterID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSendMediaStoresAttachment(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	barterID := env.acceptedBarter(t, alice, bob)

	file := formFile(t, "chord-chart.png", pngBytes(t, 40, 20))
	msg, err := env.svc.ChatService.SendMedia(context.Background(), env.db, alice, barterID, "chords", file)
	require.NoError(t, err)

	assert.Equal(t, string(models.MessageTypeMedia), msg.MessageType)
	assert.Equal(t, "chords", msg.Content)
	require.NotNil(t, msg.Media)
	assert.Equal(t, "image", msg.Media.Type)
	assert.Equal(t, "chord-chart.png", msg.Media.Name)
	assert.True(t, strings.HasPrefix(msg.Media.URL, "https://cdn.test/message-attachments/"+barterID+"/"+alice+"/"))

	objects, _ := env.store.count()
	assert.Equal(t, 1, objects)

	t.Run("spreadsheets", func(t *testing.T) {
		xlsx := formFile(t, "budget.xlsx", zipBytes(t))
		msg, err := env.svc.ChatService.SendMedia(context.Background(), env.db, alice, barterID, "", xlsx)
		require.NoError(t, err)
		require.NotNil(t, msg.Media)
		assert.Equal(t, "document", msg.Media.Type)
		assert.Equal(t, "budget.xlsx", msg.Media.Name)

		xls := formFile(t, "budget.xls", oleBytes())
		msg, err = env.svc.ChatService.SendMedia(context.Background(), env.db, alice, barterID, "", xls)
		require.NoError(t, err)
		assert.Equal(t, "document", msg.Media.Type)
	})

	t.Run("unsupported type", func(t *testing.T) {
		exe := formFile(t, "setup.exe", []byte("MZ\x90\x00binary"))
		_, err := env.svc.ChatService.SendMedia(context.Background(), env.db, alice, barterID, "", exe)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
	})
}
