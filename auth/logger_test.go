package auth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "", redactToken(""))
	assert.Equal(t, "***", redactToken("short"))
	assert.Equal(t, "eyJhbGci...", redactToken("eyJhbGciOiJIUzI1NiJ9.e30.sig"))
}

func TestLogSecurityEvent_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logSecurityEvent(logger, securityEvent{
		requestID: "req-1",
		reason:    "expired",
		client:    "192.0.2.7",
		token:     "eyJhbGciOiJIUzI1NiJ9.payload.signature",
		latency:   time.Millisecond,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "authentication failed", entry["msg"])

	ev, ok := entry["auth_event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "failure", ev["event"])
	assert.Equal(t, "req-1", ev["request_id"])
	assert.Equal(t, "expired", ev["failure_reason"])
	assert.Equal(t, "eyJhbGci...", ev["token"])
	assert.NotContains(t, buf.String(), "signature")
	assert.NotContains(t, ev, "subject")
}

func TestLogSecurityEvent_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		logSecurityEvent(nil, securityEvent{success: true})
	})
}
