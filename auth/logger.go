package auth

import (
	"log/slog"
	"time"
)

// securityEvent is one structured log entry per authentication attempt.
type securityEvent struct {
	success   bool
	requestID string
	subject   string
	reason    string
	client    string
	token     string
	latency   time.Duration
}

// LogValue implements slog.LogValuer. The token is always redacted.
func (e securityEvent) LogValue() slog.Value {
	outcome := "failure"
	if e.success {
		outcome = "success"
	}
	attrs := []slog.Attr{
		slog.String("event", outcome),
		slog.String("request_id", e.requestID),
		slog.String("token", redactToken(e.token)),
		slog.Duration("latency", e.latency),
	}
	if e.subject != "" {
		attrs = append(attrs, slog.String("subject", e.subject))
	}
	if e.reason != "" {
		attrs = append(attrs, slog.String("failure_reason", e.reason))
	}
	if e.client != "" {
		attrs = append(attrs, slog.String("client", e.client))
	}
	return slog.GroupValue(attrs...)
}

// redactToken keeps at most the first 8 characters, which for a compact
// token is part of the public header.
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

func logSecurityEvent(logger *slog.Logger, e securityEvent) {
	if logger == nil {
		return
	}
	if e.success {
		logger.Info("authentication succeeded", "auth_event", e)
		return
	}
	logger.Warn("authentication failed", "auth_event", e)
}
