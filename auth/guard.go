package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hasbyte1/go-secure-utils/jwt"
)

// RequestIDHeader is read for an incoming correlation ID and echoed by the
// middleware. A UUID is generated when the header is absent.
const RequestIDHeader = "X-Request-ID"

// ClaimsValidator is a hook invoked after a token's signature and temporal
// claims have been verified. Return a non-nil error to reject the request.
//
// Typical uses: revocation lists keyed on jti, tenant checks.
type ClaimsValidator func(ctx context.Context, claims jwt.Claims) error

// EventType identifies the type of an authentication event.
type EventType int

const (
	// EventAuthenticated fires after a request is successfully authenticated.
	EventAuthenticated EventType = iota
	// EventFailed fires when authentication fails for any reason.
	EventFailed
)

// AuthEvent carries the details of an authentication event delivered to [EventListener]s.
type AuthEvent struct {
	// Type is EventAuthenticated or EventFailed.
	Type EventType
	// RequestID correlates the event with log lines.
	RequestID string
	// Client is the address the attempt came from, if known.
	Client string
	// Subject is the sub claim. Empty on EventFailed.
	Subject string
	// Reason is a short machine-readable failure cause, e.g. "expired" or
	// "missing_token". Empty on EventAuthenticated.
	Reason string
	// Err is the error returned to the caller. Nil on EventAuthenticated.
	Err error
}

// EventListener receives [AuthEvent]s emitted by the [Guard].
type EventListener func(event AuthEvent)

// GuardOption is a functional option for configuring a [Guard].
type GuardOption func(*Guard)

// WithCodec replaces the token codec. Config.Leeway is ignored when a codec
// is supplied.
func WithCodec(c *jwt.Codec) GuardOption {
	return func(g *Guard) {
		if c != nil {
			g.codec = c
		}
	}
}

// WithLogger enables structured security logging. Tokens are redacted.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = l
	}
}

// WithClaimsValidator adds a custom post-verification hook.
// Multiple validators are called in the order they are added; the first error
// aborts the chain.
func WithClaimsValidator(v ClaimsValidator) GuardOption {
	return func(g *Guard) {
		g.validators = append(g.validators, v)
	}
}

// WithEventListener registers a listener that will be called on every auth event.
func WithEventListener(l EventListener) GuardOption {
	return func(g *Guard) {
		g.listeners = append(g.listeners, l)
	}
}

// WithFailureLimit refuses clients with [ErrTooManyAttempts] once they have
// failed burst times faster than r allows.
func WithFailureLimit(r rate.Limit, burst int) GuardOption {
	return func(g *Guard) {
		if burst > 0 {
			g.limiter = newFailureLimiter(r, burst)
		}
	}
}

// Guard verifies bearer tokens. It is safe for concurrent use.
type Guard struct {
	codec      *jwt.Codec
	config     Config
	secret     []byte
	logger     *slog.Logger
	validators []ClaimsValidator
	listeners  []EventListener
	limiter    *failureLimiter
}

// NewGuard constructs a Guard. It fails with [ErrInvalidConfig] when the
// configuration has no secret.
func NewGuard(cfg Config, opts ...GuardOption) (*Guard, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.AbilitiesClaim == "" {
		cfg.AbilitiesClaim = DefaultConfig().AbilitiesClaim
	}
	g := &Guard{
		config: cfg,
		secret: []byte(cfg.Secret),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.codec == nil {
		g.codec = jwt.New(jwt.WithLeeway(cfg.Leeway))
	}
	return g, nil
}

// attempt is one authentication attempt, independent of transport.
type attempt struct {
	token     string
	requestID string
	client    string
	slot      *slot
}

// Authenticate reads the token from r and verifies it.
//
// On success it returns a populated [AuthContext]. On failure it returns one
// of [ErrUnauthorized], [ErrInvalidToken], [ErrTooManyAttempts].
func (g *Guard) Authenticate(r *http.Request) (*AuthContext, error) {
	return g.authenticate(r.Context(), attempt{
		token:     g.extractToken(r),
		requestID: requestIDFrom(r.Header.Get(RequestIDHeader)),
		client:    clientAddress(r, g.config.TrustProxyHeaders),
	})
}

// AuthenticateToken verifies a token obtained by other means, such as a
// message header. The failure limiter is not consulted.
func (g *Guard) AuthenticateToken(ctx context.Context, token string) (*AuthContext, error) {
	return g.authenticate(ctx, attempt{token: token, requestID: uuid.NewString()})
}

func (g *Guard) authenticate(ctx context.Context, a attempt) (*AuthContext, error) {
	start := time.Now()

	if g.limiter != nil && a.client != "" {
		s, ok := g.limiter.acquire(a.client)
		if !ok {
			return nil, g.fail(a, start, "rate_limited", ErrTooManyAttempts, false)
		}
		a.slot = s
	}
	if a.token == "" {
		return nil, g.fail(a, start, "missing_token", ErrUnauthorized, false)
	}

	claims, err := g.codec.Validate(a.token, g.secret, g.config.IgnoreExpiration)
	if err != nil {
		return nil, g.fail(a, start, jwt.StateOf(err).String(), ErrInvalidToken, true)
	}
	if reason := g.checkClaims(claims); reason != "" {
		return nil, g.fail(a, start, reason, ErrInvalidToken, true)
	}
	for _, v := range g.validators {
		if err := v(ctx, claims); err != nil {
			return nil, g.fail(a, start, "rejected_by_validator", ErrInvalidToken, true)
		}
	}

	ac := &AuthContext{
		Claims:    claims,
		Token:     a.token,
		RequestID: a.requestID,
		Abilities: claims.Strings(g.config.AbilitiesClaim),
	}
	a.slot.release(false)
	logSecurityEvent(g.logger, securityEvent{
		success:   true,
		requestID: a.requestID,
		subject:   ac.Subject(),
		client:    a.client,
		token:     a.token,
		latency:   time.Since(start),
	})
	g.emit(AuthEvent{Type: EventAuthenticated, RequestID: a.requestID, Client: a.client, Subject: ac.Subject()})
	return ac, nil
}

// checkClaims applies the configured claim requirements and returns a failure
// reason, or "" when the claims are acceptable.
func (g *Guard) checkClaims(claims jwt.Claims) string {
	for _, name := range g.config.RequiredClaims {
		if _, ok := claims[name]; !ok {
			return "missing_claim"
		}
	}
	if g.config.Issuer != "" && claims.Issuer() != g.config.Issuer {
		return "issuer_mismatch"
	}
	if g.config.Audience != "" && !slices.Contains(claims.Audience(), g.config.Audience) {
		return "audience_mismatch"
	}
	return ""
}

func (g *Guard) fail(a attempt, start time.Time, reason string, err error, count bool) error {
	a.slot.release(count)
	logSecurityEvent(g.logger, securityEvent{
		requestID: a.requestID,
		reason:    reason,
		client:    a.client,
		token:     a.token,
		latency:   time.Since(start),
	})
	g.emit(AuthEvent{Type: EventFailed, RequestID: a.requestID, Client: a.client, Reason: reason, Err: err})
	return err
}

func (g *Guard) emit(e AuthEvent) {
	for _, l := range g.listeners {
		l(e)
	}
}

// retryAfter reports how long the client behind r must wait. Zero when no
// limiter is configured.
func (g *Guard) retryAfter(client string) time.Duration {
	if g.limiter == nil || client == "" {
		return 0
	}
	return g.limiter.retryAfter(client)
}

// extractToken reads "Authorization: Bearer <token>", falling back to the
// configured cookie.
func (g *Guard) extractToken(r *http.Request) string {
	if t := bearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	if g.config.CookieName != "" {
		if c, err := r.Cookie(g.config.CookieName); err == nil {
			return strings.TrimSpace(c.Value)
		}
	}
	return ""
}

// bearerToken extracts the token from an Authorization header value.
// Returns an empty string when the value is absent or uses another scheme.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// requestIDFrom accepts an incoming ID of sane length and generates one
// otherwise.
func requestIDFrom(incoming string) string {
	if incoming != "" && len(incoming) <= 128 {
		return incoming
	}
	return uuid.NewString()
}

// statusFor maps guard errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

func retryAfterSeconds(d time.Duration) string {
	return fmt.Sprintf("%d", int(d/time.Second))
}
