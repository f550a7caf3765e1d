package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for a [Guard].
type Config struct {
	// Secret is the HMAC key tokens are verified with. Required.
	Secret string `env:"AUTH_JWT_SECRET,required,notEmpty,unset"`

	// IgnoreExpiration accepts tokens whose exp has passed. There is no
	// implicit default in the codec; this field is the explicit choice.
	IgnoreExpiration bool `env:"AUTH_IGNORE_EXPIRATION" envDefault:"false"`

	// Leeway tolerates clock drift when checking exp and nbf.
	Leeway time.Duration `env:"AUTH_LEEWAY" envDefault:"0s"`

	// CookieName enables token extraction from a cookie when the
	// Authorization header is absent. Empty disables the fallback.
	CookieName string `env:"AUTH_COOKIE_NAME"`

	// RequiredClaims lists claim names every accepted token must carry.
	RequiredClaims []string `env:"AUTH_REQUIRED_CLAIMS" envSeparator:","`

	// Issuer, when set, must equal the iss claim.
	Issuer string `env:"AUTH_ISSUER"`

	// Audience, when set, must be one of the aud claim values.
	Audience string `env:"AUTH_AUDIENCE"`

	// AbilitiesClaim names the claim holding the token's abilities.
	// Defaults to "abilities".
	AbilitiesClaim string `env:"AUTH_ABILITIES_CLAIM" envDefault:"abilities"`

	// TrustProxyHeaders keys the failure limiter on X-Forwarded-For /
	// X-Real-IP instead of the connection address. Enable only behind a
	// proxy that overwrites those headers.
	TrustProxyHeaders bool `env:"AUTH_TRUST_PROXY_HEADERS" envDefault:"false"`
}

// DefaultConfig returns a [Config] populated with defaults for everything
// except the secret.
func DefaultConfig() Config {
	return Config{AbilitiesClaim: "abilities"}
}

// LoadConfig loads .env files (default ".env"; missing files are ignored) and
// then parses the AUTH_* environment variables. Variables already present in
// the environment win over the files. The secret variable is unset after it
// has been read.
func LoadConfig(filenames ...string) (Config, error) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("%w: secret must not be empty", ErrInvalidConfig)
	}
	if c.Leeway < 0 {
		return fmt.Errorf("%w: leeway must be non-negative, got %v", ErrInvalidConfig, c.Leeway)
	}
	return nil
}
