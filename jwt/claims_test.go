package jwt_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hasbyte1/go-secure-utils/jwt"
)

func TestClaims_RegisteredAccessors(t *testing.T) {
	c := jwt.Claims{
		"iss": "auth-service",
		"sub": "u1",
		"jti": "abc",
		"aud": "api",
	}
	assert.Equal(t, "auth-service", c.Issuer())
	assert.Equal(t, "u1", c.Subject())
	assert.Equal(t, "abc", c.ID())
	assert.Equal(t, []string{"api"}, c.Audience())

	c["aud"] = []any{"api", "web"}
	assert.Equal(t, []string{"api", "web"}, c.Audience())

	c["sub"] = 42
	assert.Equal(t, "", c.Subject(), "non-string subject")
}

func TestClaims_NumericDates(t *testing.T) {
	want := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name  string
		value any
	}{
		{"float64 from JSON", float64(1_700_000_000)},
		{"int64 before encode", int64(1_700_000_000)},
		{"int", 1_700_000_000},
		{"json.Number", json.Number("1700000000")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := jwt.Claims{"exp": tt.value, "nbf": tt.value, "iat": tt.value}

			exp, ok := c.ExpiresAt()
			assert.True(t, ok)
			assert.True(t, want.Equal(exp))

			nbf, ok := c.NotBefore()
			assert.True(t, ok)
			assert.True(t, want.Equal(nbf))

			iat, ok := c.IssuedAt()
			assert.True(t, ok)
			assert.True(t, want.Equal(iat))
		})
	}

	_, ok := jwt.Claims{}.ExpiresAt()
	assert.False(t, ok, "absent")

	_, ok = jwt.Claims{"exp": "tomorrow"}.ExpiresAt()
	assert.False(t, ok, "wrong type")
}

func TestClaims_Strings(t *testing.T) {
	c := jwt.Claims{
		"one":   "read",
		"typed": []string{"read", "write"},
		"json":  []any{"read", 7, "write"},
		"num":   3,
	}
	assert.Equal(t, []string{"read"}, c.Strings("one"))
	assert.Equal(t, []string{"read", "write"}, c.Strings("typed"))
	assert.Equal(t, []string{"read", "write"}, c.Strings("json"))
	assert.Nil(t, c.Strings("num"))
	assert.Nil(t, c.Strings("missing"))
}
