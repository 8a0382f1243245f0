package feed

import (
	"encoding/json"
	"testing"
	"time"

	ws "github.com/daleel/daleel-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ev := ws.MaterialEvent{
		Event:        ws.EventMaterialUploaded,
		MaterialID:   12,
		CourseCode:   "CS101",
		Title:        "Week 1 slides",
		FileType:     "pdf",
		UploaderName: "Sara",
		UploadedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	got, err := Decode(string(payload))
	require.NoError(t, err)
	assert.Equal(t, ev.MaterialID, got.MaterialID)
	assert.Equal(t, ev.CourseCode, got.CourseCode)
	assert.True(t, ev.UploadedAt.Equal(got.UploadedAt))
}

func TestDecode_Rejects(t *testing.T) {
	for _, payload := range []string{
		"not json",
		`{"event":"pong"}`,
		`{"event":"material_uploaded","material_id":0}`,
	} {
		_, err := Decode(payload)
		assert.Error(t, err, payload)
	}
}
