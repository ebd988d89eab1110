package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lom3e/Formingo/internal/events/domain"
)

func TestLogger_PublishWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(zerolog.New(&buf))

	err := l.Publish(context.Background(), domain.Event{
		Type:     domain.TypeAuthRejected,
		ClientID: "acme",
		Meta:     map[string]string{"ip": "10.0.0.1", "reason": "invalid api key"},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "contact.auth.rejected", line["type"])
	assert.Equal(t, "acme", line["client_id"])
	assert.Equal(t, "audit", line["component"])
	meta, ok := line["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", meta["ip"])
}
