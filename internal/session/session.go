// Package session bootstraps the login-session artifact shared by
// every lakeacl invocation on this machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"github.com/tidelake/lakeacl/internal/lakesdk"
	"github.com/tidelake/lakeacl/internal/utils"
)

const (
	artifactDir  = "lakeacl"
	artifactFile = "session.json"
	lockFile     = "session.lock"

	// expirySkew is how close to expiry a stored token may be before we
	// stop trusting it for a full sweep.
	expirySkew = 2 * time.Minute

	lockRetryDelay = 100 * time.Millisecond
)

var (
	ErrNoAccount = errors.New("account is required")
	ErrNoKey     = errors.New("account key is required")
	ErrExpired   = errors.New("session expired")
)

// Session is the resolved operating context for one run. It is built
// once and passed by value; nothing re-reads the artifact mid-run.
type Session struct {
	Endpoint    string    `json:"endpoint"`
	Account     string    `json:"account"`
	Principal   string    `json:"principal"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	DeviceID    string    `json:"deviceId"`
}

// Options carries what Ensure needs to load or mint a session.
type Options struct {
	Endpoint string
	Account  string
	Key      string
}

func (o *Options) Validate() error {
	if err := utils.ValidateURL(o.Endpoint); err != nil {
		return err
	}
	if o.Account == "" {
		return ErrNoAccount
	}
	if o.Key == "" {
		return ErrNoKey
	}
	return nil
}

// Path is the fixed artifact location. Sessions are machine-local and
// disposable, so they live under the OS temp dir.
func Path() string {
	return filepath.Join(os.TempDir(), artifactDir, artifactFile)
}

// Ensure returns a usable session. A fresh artifact on disk wins; the
// key exchange runs only when the artifact is missing, stale, or was
// minted for a different endpoint or account. Creation is serialized
// with a file lock so concurrent invocations do not both exchange.
func Ensure(ctx context.Context, opts *Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	lock := flock.New(filepath.Join(filepath.Dir(path), lockFile))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return nil, errors.New("session lock is held")
	}
	defer lock.Unlock()

	if existing, err := load(path); err == nil {
		if existing.matches(opts) && existing.Fresh() {
			slog.Debug("session reused", "path", path, "expires", existing.ExpiresAt)
			return existing, nil
		}
		slog.Debug("session stale", "path", path)
	}

	created, err := create(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := created.save(path); err != nil {
		return nil, err
	}

	slog.Debug("session created", "path", path, "expires", created.ExpiresAt)
	return created, nil
}

// Clear drops the artifact. Login calls this so a new key never races
// a stale session.
func Clear() error {
	err := os.Remove(Path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Fresh reports whether the token is still comfortably inside its
// lifetime.
func (s *Session) Fresh() bool {
	return time.Now().Add(expirySkew).Before(s.ExpiresAt)
}

func (s *Session) Validate() error {
	if err := utils.ValidateURL(s.Endpoint); err != nil {
		return err
	}
	if s.Account == "" {
		return ErrNoAccount
	}
	if s.AccessToken == "" {
		return errors.New("session has no access token")
	}
	if !s.Fresh() {
		return ErrExpired
	}
	return nil
}

func (s *Session) String() string {
	return fmt.Sprintf("account=%s principal=%s token=%s expires=%s",
		s.Account, s.Principal, utils.MaskSecret(s.AccessToken), s.ExpiresAt.Format(time.RFC3339))
}

func (s *Session) matches(opts *Options) bool {
	return s.Endpoint == opts.Endpoint && s.Account == opts.Account
}

func create(ctx context.Context, opts *Options) (*Session, error) {
	token, err := lakesdk.ExchangeKey(ctx, opts.Endpoint, &lakesdk.TokenRequest{
		Account: opts.Account,
		Key:     opts.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange key: %w", err)
	}

	// Opaque tokens fall back to the advertised lifetime.
	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	principal := opts.Account
	if claims, parseErr := lakesdk.ParseClaimsUnverified(token.AccessToken); parseErr == nil {
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		if claims.Subject != "" {
			principal = claims.Subject
		}
	}

	return &Session{
		Endpoint:    opts.Endpoint,
		Account:     opts.Account,
		Principal:   principal,
		AccessToken: token.AccessToken,
		ExpiresAt:   expiresAt,
		DeviceID:    utils.HWID,
	}, nil
}

func load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := gojson.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session artifact: %w", err)
	}
	return &sess, nil
}

func (s *Session) save(path string) error {
	data, err := gojson.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session artifact: %w", err)
	}
	return nil
}
