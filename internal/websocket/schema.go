package websocket

import "time"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client message shape on the feed.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError            Event = "error"
	EventSubscribed       Event = "subscribed"
	EventMaterialUploaded Event = "material_uploaded"
	EventPong             Event = "pong"
)

// MaterialEvent announces a new material for a course. It is also the
// payload published on the course's Redis channel.
type MaterialEvent struct {
	Event        Event     `json:"event"`
	MaterialID   int       `json:"material_id"`
	CourseCode   string    `json:"course_code"`
	Title        string    `json:"title"`
	FileType     string    `json:"file_type"`
	UploaderName string    `json:"uploader_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type SubscribedResponse struct {
	Event      Event  `json:"event"`
	CourseCode string `json:"course_code"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
