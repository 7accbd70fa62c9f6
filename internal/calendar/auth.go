package calendar

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/comigor/booking-go/internal/booking"
	"github.com/comigor/booking-go/internal/logger"
)

// LoadOAuthConfig reads an OAuth client secrets file downloaded from the
// Google Cloud console and requests full calendar access.
func LoadOAuthConfig(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}
	conf, err := google.ConfigFromJSON(b, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	return conf, nil
}

// TokenStore persists one OAuth token as JSON. A sibling ".lock" file
// serializes access between processes sharing the token.
type TokenStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load returns the stored token. A missing file is reported as
// booking.ErrAuth.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no token at %s, run the auth command", booking.ErrAuth, s.path)
	}
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock token file: %w", err)
	}
	defer s.lock.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("%w: decode token: %v", booking.ErrAuth, err)
	}
	return tok, nil
}

// Save writes tok atomically with owner-only permissions.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock token file: %w", err)
	}
	defer s.lock.Unlock()

	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

type persistingSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store *TokenStore
	last  string
}

// PersistingTokenSource saves every refreshed token handed out by base so
// the next process start does not need to refresh again.
func PersistingTokenSource(base oauth2.TokenSource, store *TokenStore, initial *oauth2.Token) oauth2.TokenSource {
	ps := &persistingSource{base: base, store: store}
	if initial != nil {
		ps.last = initial.AccessToken
	}
	return oauth2.ReuseTokenSource(initial, ps)
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := p.store.Save(tok); err != nil {
			logger.L.Warn("failed to persist refreshed token", "error", err)
		} else {
			p.last = tok.AccessToken
		}
	}
	return tok, nil
}

// Authorize runs the installed-app flow: it prints the consent URL to out,
// reads the authorization code from in and stores the resulting token.
func Authorize(ctx context.Context, conf *oauth2.Config, store *TokenStore, in io.Reader, out io.Writer) error {
	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open the following link in your browser:\n%s\n\nAuthorization code: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: empty authorization code", booking.ErrAuth)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: exchange authorization code: %v", booking.ErrAuth, err)
	}
	if err := store.Save(tok); err != nil {
		return err
	}
	logger.L.Info("calendar token stored", "path", store.path)
	return nil
}
