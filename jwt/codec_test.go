package jwt_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-secure-utils/jwt"
)

var (
	testSecret = []byte("secret123")
	epoch      = time.Unix(1_700_000_000, 0)
)

// clock is a settable time source for temporal tests.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func seg(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

// ──────────────────────────────────────────────────────────────────────────────
// Encode
// ──────────────────────────────────────────────────────────────────────────────

func TestEncode_SetsIssuedAtAndExpiry(t *testing.T) {
	codec := jwt.New(jwt.WithClock(newClock(epoch).Now))

	token, err := codec.Encode(jwt.Claims{"sub": "u1"}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, float64(epoch.Unix()), claims["iat"])
	assert.Equal(t, float64(epoch.Unix()+3600), claims["exp"])
}

func TestEncode_WithoutExpiryOmitsExp(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"sub": "u1"}, testSecret, 0)
	require.NoError(t, err)

	claims, err := jwt.Decode(token)
	require.NoError(t, err)
	assert.NotContains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
}

func TestEncode_OverwritesCallerTimestamps(t *testing.T) {
	codec := jwt.New(jwt.WithClock(newClock(epoch).Now))

	token, err := codec.Encode(jwt.Claims{"exp": 1, "iat": 2}, testSecret, 10*time.Second)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, float64(epoch.Unix()), claims["iat"])
	assert.Equal(t, float64(epoch.Unix()+10), claims["exp"])
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	in := jwt.Claims{"sub": "u1"}
	_, err := jwt.Encode(in, testSecret, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, jwt.Claims{"sub": "u1"}, in)
}

func TestEncode_Header(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{}, testSecret, 0)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", parts[0])
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}

func TestEncode_SignatureIsRawDigest(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"sub": "u1"}, testSecret, 0)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	mac := hmac.New(sha256.New, testSecret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), parts[2])
}

func TestEncode_RejectsInvalidArguments(t *testing.T) {
	cyclic := jwt.Claims{}
	cyclic["self"] = map[string]any(cyclic)

	tests := []struct {
		name      string
		claims    jwt.Claims
		secret    []byte
		expiresIn time.Duration
	}{
		{"nil claims", nil, testSecret, 0},
		{"nil secret", jwt.Claims{}, nil, 0},
		{"empty secret", jwt.Claims{}, []byte{}, 0},
		{"negative expiry", jwt.Claims{}, testSecret, -time.Second},
		{"sub-second expiry", jwt.Claims{}, testSecret, 500 * time.Millisecond},
		{"channel value", jwt.Claims{"c": make(chan int)}, testSecret, 0},
		{"func value", jwt.Claims{"f": func() {}}, testSecret, 0},
		{"NaN value", jwt.Claims{"n": math.NaN()}, testSecret, 0},
		{"cyclic value", cyclic, testSecret, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Encode(tt.claims, tt.secret, tt.expiresIn)
			require.ErrorIs(t, err, jwt.ErrInvalidArgument)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Decode
// ──────────────────────────────────────────────────────────────────────────────

func TestDecode_RoundTrip(t *testing.T) {
	in := jwt.Claims{
		"sub":    "u1",
		"aud":    []any{"api", "web"},
		"admin":  true,
		"score":  12.5,
		"nested": map[string]any{"k": "v", "n": float64(3)},
		"none":   nil,
	}
	token, err := jwt.Encode(in, testSecret, 0)
	require.NoError(t, err)

	out, err := jwt.Decode(token)
	require.NoError(t, err)

	iat, ok := out["iat"]
	require.True(t, ok)
	assert.IsType(t, float64(0), iat)
	delete(out, "iat")
	assert.Equal(t, in, out)
}

func TestDecode_DoesNotCheckSignature(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"sub": "u1"}, testSecret, 0)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := parts[0] + "." + parts[1] + "." + seg("not a signature")

	claims, err := jwt.Decode(forged)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject())
}

func TestDecode_Malformed(t *testing.T) {
	header := seg(`{"alg":"HS256","typ":"JWT"}`)
	payload := seg(`{"sub":"u1"}`)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", header + "." + payload},
		{"four segments", header + "." + payload + ".sig.extra"},
		{"empty header", "." + payload + ".sig"},
		{"empty payload", header + "..sig"},
		{"empty signature", header + "." + payload + "."},
		{"payload not base64", header + ".!!!." + "sig"},
		{"payload padded", header + "." + base64.URLEncoding.EncodeToString([]byte(`{"a":1}`)) + ".sig"},
		{"payload not JSON", header + "." + seg("not json") + ".sig"},
		{"payload JSON array", header + "." + seg(`[1,2]`) + ".sig"},
		{"header not JSON", seg("nope") + "." + payload + ".sig"},
		{"header JSON null", seg(`null`) + "." + payload + ".sig"},
		{"payload JSON null", header + "." + seg(`null`) + ".sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Decode(tt.token)
			require.ErrorIs(t, err, jwt.ErrMalformed)
		})
	}
}

func TestDecodeAndParse_AnyAlgorithmHeader(t *testing.T) {
	payload := seg(`{"sub":"u1"}`)

	tests := []struct {
		name    string
		header  string
		wantAlg string
	}{
		{"unregistered alg", `{"alg":"XX","typ":"JWT"}`, "XX"},
		{"no alg", `{"typ":"JWT"}`, ""},
		{"alg not a string", `{"alg":7}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := seg(tt.header) + "." + payload + "." + seg("sig")

			claims, err := jwt.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.Subject())

			pt, err := jwt.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlg, pt.Algorithm())
			assert.Equal(t, "u1", pt.Payload.Subject())

			// Inspection is not authorization: the algorithm is still pinned.
			_, ok := jwt.Verify(token, testSecret, false)
			assert.False(t, ok)
			pt, err = jwt.ParseWithSecret(token, testSecret)
			require.NoError(t, err)
			assert.False(t, pt.SignatureValid)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Verify / Validate
// ──────────────────────────────────────────────────────────────────────────────

func TestVerify_IssuedTokenScenario(t *testing.T) {
	codec := jwt.New(jwt.WithClock(newClock(epoch).Now))

	token, err := codec.Encode(jwt.Claims{"sub": "u1"}, []byte("secret123"), 3600*time.Second)
	require.NoError(t, err)

	claims, ok := codec.Verify(token, []byte("secret123"), false)
	require.True(t, ok)
	assert.Equal(t, jwt.Claims{
		"sub": "u1",
		"iat": float64(epoch.Unix()),
		"exp": float64(epoch.Unix() + 3600),
	}, claims)

	claims, ok = codec.Verify(token, []byte("wrong"), false)
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"sub": "u1"}, []byte("first"), time.Minute)
	require.NoError(t, err)

	for _, s := range []string{"second", "first ", "firs", "FIRST"} {
		_, ok := jwt.Verify(token, []byte(s), false)
		assert.False(t, ok, "secret %q", s)
	}
	_, err = jwt.Validate(token, []byte("second"), false)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestVerify_EveryBitFlipIsRejected(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"sub": "u1", "role": "admin"}, testSecret, time.Hour)
	require.NoError(t, err)
	_, ok := jwt.Verify(token, testSecret, false)
	require.True(t, ok)

	raw := []byte(token)
	for i := range raw {
		if raw[i] == '.' {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), raw...)
			tampered[i] ^= 1 << bit
			_, ok := jwt.Verify(string(tampered), testSecret, false)
			require.False(t, ok, "flip of bit %d at offset %d accepted", bit, i)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.MapClaims{"sub": "u1"}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = jwt.Validate(hs512, testSecret, false)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)

	none := seg(`{"alg":"none","typ":"JWT"}`) + "." + seg(`{"sub":"u1"}`) + "." + seg("x")
	_, ok := jwt.Verify(none, testSecret, false)
	assert.False(t, ok)
}

func TestVerify_EmptySecret(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"sub": "u1"}, testSecret, 0)
	require.NoError(t, err)

	_, ok := jwt.Verify(token, nil, false)
	assert.False(t, ok)

	_, err = jwt.Validate(token, []byte{}, false)
	assert.ErrorIs(t, err, jwt.ErrInvalidArgument)
}

func TestVerify_MalformedNeverPanics(t *testing.T) {
	for _, s := range []string{"", ".", "..", "a.b.c", "a.b.c.d", strings.Repeat(".", 100)} {
		assert.NotPanics(t, func() {
			_, ok := jwt.Verify(s, testSecret, false)
			assert.False(t, ok)
		})
	}
}

func TestValidate_ExpirationBoundary(t *testing.T) {
	clk := newClock(epoch)
	codec := jwt.New(jwt.WithClock(clk.Now))

	token, err := codec.Encode(jwt.Claims{"sub": "u1"}, testSecret, time.Second)
	require.NoError(t, err)

	_, ok := codec.Verify(token, testSecret, false)
	assert.True(t, ok, "fresh token")

	clk.Set(epoch.Add(time.Second))
	_, ok = codec.Verify(token, testSecret, false)
	assert.True(t, ok, "at the expiry instant")

	clk.Set(epoch.Add(1999 * time.Millisecond))
	_, ok = codec.Verify(token, testSecret, false)
	assert.True(t, ok, "within the expiry second")
	pt, err := codec.Parse(token)
	require.NoError(t, err)
	assert.False(t, pt.Expired, "Parse agrees within the expiry second")

	clk.Set(epoch.Add(2 * time.Second))
	_, ok = codec.Verify(token, testSecret, false)
	assert.False(t, ok, "after expiry")

	_, err = codec.Validate(token, testSecret, false)
	assert.ErrorIs(t, err, jwt.ErrExpired)

	claims, ok := codec.Verify(token, testSecret, true)
	assert.True(t, ok, "ignoreExpiration")
	assert.Equal(t, "u1", claims.Subject())
}

func TestValidate_NotBeforeBoundary(t *testing.T) {
	clk := newClock(epoch)
	codec := jwt.New(jwt.WithClock(clk.Now))
	nbf := epoch.Add(time.Minute)

	token, err := codec.Encode(jwt.Claims{"nbf": nbf.Unix()}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = codec.Validate(token, testSecret, false)
	assert.ErrorIs(t, err, jwt.ErrNotYetValid)

	_, err = codec.Validate(token, testSecret, true)
	assert.ErrorIs(t, err, jwt.ErrNotYetValid, "ignoreExpiration does not bypass nbf")

	clk.Set(nbf)
	_, ok := codec.Verify(token, testSecret, false)
	assert.True(t, ok, "at nbf")

	clk.Set(nbf.Add(time.Second))
	_, ok = codec.Verify(token, testSecret, false)
	assert.True(t, ok, "after nbf")
}

func TestValidate_SignatureCheckedBeforeExpiry(t *testing.T) {
	clk := newClock(epoch)
	codec := jwt.New(jwt.WithClock(clk.Now))

	token, err := codec.Encode(jwt.Claims{"sub": "u1"}, testSecret, time.Second)
	require.NoError(t, err)

	clk.Set(epoch.Add(time.Hour))
	_, err = codec.Validate(token, []byte("other"), false)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
	assert.NotErrorIs(t, err, jwt.ErrExpired)
}

func TestValidate_Leeway(t *testing.T) {
	clk := newClock(epoch)
	codec := jwt.New(jwt.WithClock(clk.Now), jwt.WithLeeway(30*time.Second))

	token, err := codec.Encode(jwt.Claims{}, testSecret, time.Second)
	require.NoError(t, err)

	clk.Set(epoch.Add(20 * time.Second))
	_, err = codec.Validate(token, testSecret, false)
	assert.NoError(t, err)

	clk.Set(epoch.Add(time.Minute))
	_, err = codec.Validate(token, testSecret, false)
	assert.ErrorIs(t, err, jwt.ErrExpired)
}

func TestValidate_NonNumericExp(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"exp": "tomorrow"}, testSecret, 0)
	require.NoError(t, err)

	_, err = jwt.Validate(token, testSecret, false)
	assert.ErrorIs(t, err, jwt.ErrMalformed)

	_, err = jwt.Validate(token, testSecret, true)
	assert.NoError(t, err)
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		err  error
		want jwt.State
	}{
		{nil, jwt.StateActive},
		{jwt.ErrMalformed, jwt.StateMalformed},
		{jwt.ErrSignatureInvalid, jwt.StateSignatureInvalid},
		{jwt.ErrInvalidArgument, jwt.StateSignatureInvalid},
		{jwt.ErrExpired, jwt.StateExpired},
		{jwt.ErrNotYetValid, jwt.StateNotYetValid},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, jwt.StateOf(tt.err))
		})
	}
	assert.Equal(t, "state(42)", jwt.State(42).String())
}

func TestCodec_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := jwt.Encode(jwt.Claims{"n": float64(i)}, testSecret, time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			claims, ok := jwt.Verify(token, testSecret, false)
			assert.True(t, ok)
			assert.Equal(t, float64(i), claims["n"])
		}(i)
	}
	wg.Wait()
}

// ──────────────────────────────────────────────────────────────────────────────
// Parse
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_ReportsStructure(t *testing.T) {
	clk := newClock(epoch)
	codec := jwt.New(jwt.WithClock(clk.Now))

	token, err := codec.Encode(jwt.Claims{"sub": "u1"}, testSecret, time.Second)
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	pt, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, token, pt.Raw)
	assert.Equal(t, map[string]any{"alg": "HS256", "typ": "JWT"}, pt.Header)
	assert.Equal(t, "HS256", pt.Algorithm())
	assert.Equal(t, "u1", pt.Payload.Subject())
	assert.Equal(t, parts[2], pt.Signature)
	assert.False(t, pt.SignatureValid)
	assert.False(t, pt.Expired)

	clk.Set(epoch.Add(time.Minute))
	pt, err = codec.Parse(token)
	require.NoError(t, err)
	assert.True(t, pt.Expired)
}

func TestParseWithSecret(t *testing.T) {
	clk := newClock(epoch)
	codec := jwt.New(jwt.WithClock(clk.Now))

	token, err := codec.Encode(jwt.Claims{"sub": "u1"}, testSecret, time.Second)
	require.NoError(t, err)
	clk.Set(epoch.Add(time.Hour))

	pt, err := codec.ParseWithSecret(token, testSecret)
	require.NoError(t, err)
	assert.True(t, pt.SignatureValid, "expiry does not affect the signature flag")
	assert.True(t, pt.Expired)

	pt, err = codec.ParseWithSecret(token, []byte("other"))
	require.NoError(t, err)
	assert.False(t, pt.SignatureValid)
}

func TestParse_NonNumericExpCountsAsExpired(t *testing.T) {
	token, err := jwt.Encode(jwt.Claims{"exp": "soon"}, testSecret, 0)
	require.NoError(t, err)

	pt, err := jwt.Parse(token)
	require.NoError(t, err)
	assert.True(t, pt.Expired)
}

func TestParse_Malformed(t *testing.T) {
	for _, s := range []string{"", "a.b", "a.b.c", seg("{}") + "." + seg("x") + ".sig"} {
		pt, err := jwt.Parse(s)
		assert.Nil(t, pt)
		assert.ErrorIs(t, err, jwt.ErrMalformed, "token %q", s)
	}
}
