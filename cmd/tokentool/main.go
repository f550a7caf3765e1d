// Command tokentool encodes, inspects and verifies HS256 tokens, and encrypts
// or decrypts values with a password.
//
//	tokentool encode  -secret S [-claims JSON] [-exp 1h] [-jti]
//	tokentool decode  TOKEN
//	tokentool verify  -secret S [-ignore-exp] TOKEN
//	tokentool parse   [-secret S] TOKEN
//	tokentool encrypt -password P PLAINTEXT
//	tokentool decrypt -password P ENVELOPE
//
// TOKEN, PLAINTEXT and ENVELOPE are read from stdin when omitted. -secret and
// -password default to TOKENTOOL_SECRET and TOKENTOOL_PASSWORD, which may also
// be set in a .env file in the working directory.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/hasbyte1/go-secure-utils/encryption"
	"github.com/hasbyte1/go-secure-utils/jwt"
)

type config struct {
	Secret   string `env:"TOKENTOOL_SECRET,unset"`
	Password string `env:"TOKENTOOL_PASSWORD,unset"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := slog.New(slog.NewTextHandler(stderr, nil))

	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: tokentool <encode|decode|verify|parse|encrypt|decrypt> [flags] [input]")
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Error("load configuration", "error", err)
		return 1
	}

	cmd := &command{
		name:   args[0],
		stdin:  stdin,
		stdout: stdout,
		log:    log,
		cfg:    cfg,
	}
	flags := flag.NewFlagSet("tokentool "+cmd.name, flag.ContinueOnError)
	flags.SetOutput(stderr)

	var runner func(rest []string) error
	switch cmd.name {
	case "encode":
		runner = cmd.encode(flags)
	case "decode":
		runner = cmd.decode
	case "verify":
		runner = cmd.verify(flags)
	case "parse":
		runner = cmd.parse(flags)
	case "encrypt":
		runner = cmd.encrypt(flags)
	case "decrypt":
		runner = cmd.decrypt(flags)
	default:
		log.Error("unknown command", "command", cmd.name)
		return 2
	}

	if err := flags.Parse(args[1:]); err != nil {
		return 2
	}
	if err := runner(flags.Args()); err != nil {
		log.Error(cmd.name+" failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, err
	}
	return env.ParseAs[config]()
}

type command struct {
	name   string
	stdin  io.Reader
	stdout io.Writer
	log    *slog.Logger
	cfg    config
}

func (c *command) encode(flags *flag.FlagSet) func([]string) error {
	secret := flags.String("secret", "", "HMAC secret (default $TOKENTOOL_SECRET)")
	claimsJSON := flags.String("claims", "{}", "claims as a JSON object")
	exp := flags.Duration("exp", 0, "lifetime, e.g. 15m; 0 for no expiry")
	withID := flags.Bool("jti", false, "add a random UUID jti claim")

	return func([]string) error {
		claims, err := parseClaims(*claimsJSON)
		if err != nil {
			return err
		}
		if *withID {
			claims[jwt.ClaimID] = uuid.NewString()
		}
		token, err := jwt.Encode(claims, []byte(c.secret(*secret)), *exp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.stdout, token)
		return err
	}
}

func (c *command) decode(rest []string) error {
	token, err := c.input(rest)
	if err != nil {
		return err
	}
	claims, err := jwt.Decode(token)
	if err != nil {
		return err
	}
	c.log.Warn("claims are unverified")
	return c.printJSON(claims)
}

func (c *command) verify(flags *flag.FlagSet) func([]string) error {
	secret := flags.String("secret", "", "HMAC secret (default $TOKENTOOL_SECRET)")
	ignoreExp := flags.Bool("ignore-exp", false, "accept expired tokens")

	return func(rest []string) error {
		token, err := c.input(rest)
		if err != nil {
			return err
		}
		claims, err := jwt.Validate(token, []byte(c.secret(*secret)), *ignoreExp)
		if err != nil {
			return fmt.Errorf("token rejected (%s): %w", jwt.StateOf(err), err)
		}
		return c.printJSON(claims)
	}
}

func (c *command) parse(flags *flag.FlagSet) func([]string) error {
	secret := flags.String("secret", "", "HMAC secret; when set the signature is checked (default $TOKENTOOL_SECRET)")

	return func(rest []string) error {
		token, err := c.input(rest)
		if err != nil {
			return err
		}
		pt, err := jwt.ParseWithSecret(token, []byte(c.secret(*secret)))
		if err != nil {
			return err
		}
		out := map[string]any{
			"header":    pt.Header,
			"payload":   pt.Payload,
			"signature": pt.Signature,
			"expired":   pt.Expired,
		}
		if c.secret(*secret) != "" {
			out["signature_valid"] = pt.SignatureValid
		}
		if exp, ok := pt.Payload.ExpiresAt(); ok {
			out["expires_at"] = exp.UTC().Format(time.RFC3339)
		}
		return c.printJSON(out)
	}
}

func (c *command) encrypt(flags *flag.FlagSet) func([]string) error {
	password := flags.String("password", "", "password (default $TOKENTOOL_PASSWORD)")

	return func(rest []string) error {
		plaintext, err := c.input(rest)
		if err != nil {
			return err
		}
		envelope, err := encryption.Encrypt(plaintext, c.password(*password))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.stdout, envelope)
		return err
	}
}

func (c *command) decrypt(flags *flag.FlagSet) func([]string) error {
	password := flags.String("password", "", "password (default $TOKENTOOL_PASSWORD)")

	return func(rest []string) error {
		envelope, err := c.input(rest)
		if err != nil {
			return err
		}
		plaintext, err := encryption.Decrypt(envelope, c.password(*password))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.stdout, plaintext)
		return err
	}
}

// secret prefers the flag over the environment. Flag defaults stay empty so
// that -h never prints a secret.
func (c *command) secret(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return c.cfg.Secret
}

func (c *command) password(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return c.cfg.Password
}

// input returns the single positional argument, or the first line of stdin
// when there is none.
func (c *command) input(rest []string) (string, error) {
	switch len(rest) {
	case 0:
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return "", errors.New("no input")
		}
		return line, nil
	case 1:
		return rest[0], nil
	default:
		return "", fmt.Errorf("expected one argument, got %d", len(rest))
	}
}

func (c *command) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseClaims(s string) (jwt.Claims, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var claims jwt.Claims
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("invalid -claims: %w", err)
	}
	if claims == nil {
		return nil, errors.New("invalid -claims: expected a JSON object")
	}
	return claims, nil
}
