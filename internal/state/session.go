package state

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
	"github.com/twitsprout/tools"
	jsonutils "github.com/twitsprout/tools/json"
)

// Keys under which the session survives restarts.
const (
	StorageKeyToken = "token"
	StorageKeyUser  = "user"
)

const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
	msgUserFailed     = "Failed to get user"
	msgSessionExpired = "Session expired, please log in again"
)

// SessionState is a copy of the session visible to callers.
type SessionState struct {
	User          *cl.User
	Authenticated bool
	Status        RequestStatus
	Error         string
}

// Session owns authentication state: the token held in Credentials, the
// signed-in user, and their persisted copies in LocalStorage.
//
// Authenticated is derived from the held token, so it is true exactly when a
// non-empty token is held. Credentials are only mutated while mu is held.
type Session struct {
	notifier

	auth    internal.AuthService
	creds   *Credentials
	storage internal.LocalStorage
	logger  tools.Logger
	opts    Options

	mu       sync.Mutex
	signOuts []func()
	user     *cl.User
	status RequestStatus
	err    string
}

// NewSession creates a signed-out Session. Call Rehydrate to restore a
// persisted one.
func NewSession(auth internal.AuthService, creds *Credentials, storage internal.LocalStorage, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		auth:    auth,
		creds:   creds,
		storage: storage,
		logger:  opts.Logger,
		opts:    opts,
	}
}

// Token implements internal.TokenSource.
func (s *Session) Token() string { return s.creds.Token() }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := SessionState{
		Authenticated: s.creds.Token() != "",
		Status:        s.status,
		Error:         s.err,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Rehydrate restores the token and user snapshot persisted by an earlier
// run, without contacting the server. FetchCurrentUser validates it later.
func (s *Session) Rehydrate(ctx context.Context) error {
	token, ok, err := s.storage.GetItem(ctx, StorageKeyToken)
	if err != nil {
		return errors.Wrap(err, "read persisted token")
	}
	if !ok || strings.TrimSpace(token) == "" {
		return nil
	}

	var user *cl.User
	raw, ok, err := s.storage.GetItem(ctx, StorageKeyUser)
	if err != nil {
		return errors.Wrap(err, "read persisted user")
	}
	if ok && raw != "" {
		var u cl.User
		if err := jsonutils.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Warn("[Rehydrate] discarding unreadable user snapshot", "details", err.Error())
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.creds.set(token)
	s.user = user
	s.mu.Unlock()
	s.notify()
	return nil
}

// Login exchanges credentials for a session. On failure the client is left
// signed out and the server's message (or a generic one) is recorded.
func (s *Session) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.fail(cl.ErrMissingCredentials, msgLoginFailed, false)
		return errors.Wrap(cl.ErrMissingCredentials, "login")
	}

	s.begin()
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.auth.Login(ctx, cl.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.logger.Warn("[Login] login rejected", "username", username, "details", err.Error())
		s.fail(err, msgLoginFailed, true)
		return err
	}

	s.mu.Lock()
	s.creds.set(res.Token)
	s.user = res.User
	s.status = StatusSucceeded
	s.err = ""
	s.persist(ctx, res.Token, res.User)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Register creates an account. It does not sign the user in.
func (s *Session) Register(ctx context.Context, name, username, password string) (cl.User, error) {
	req := cl.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if req.Name == "" {
		s.fail(cl.ErrMissingName, msgRegisterFailed, false)
		return cl.User{}, errors.Wrap(cl.ErrMissingName, "register")
	}
	if req.Username == "" || req.Password == "" {
		s.fail(cl.ErrMissingCredentials, msgRegisterFailed, false)
		return cl.User{}, errors.Wrap(cl.ErrMissingCredentials, "register")
	}

	s.begin()
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.auth.Register(ctx, req)
	if err != nil {
		s.fail(err, msgRegisterFailed, false)
		return cl.User{}, err
	}

	s.mu.Lock()
	s.status = StatusSucceeded
	s.err = ""
	s.mu.Unlock()
	s.notify()

	return userOf(res), nil
}

// Logout signs out locally and then asks the server to invalidate the token.
// The local session is cleared whatever the server says; a failed remote
// call is only logged.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.creds.Token()
	s.clearLocked(context.WithoutCancel(ctx))
	s.status = StatusIdle
	s.err = ""
	s.mu.Unlock()
	s.notify()
	s.signedOut()

	if token == "" {
		return
	}
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	if err := s.auth.Logout(ctx, token); err != nil {
		s.logger.Warn("[Logout] remote logout failed", "details", err.Error())
	}
}

// FetchCurrentUser validates the held token against the server. Any
// failure, including a network failure, signs the client out.
func (s *Session) FetchCurrentUser(ctx context.Context) (cl.User, error) {
	token := s.creds.Token()
	if token == "" {
		s.fail(cl.ErrNotAuthenticated, msgUserFailed, true)
		return cl.User{}, errors.Wrap(cl.ErrNotAuthenticated, "current user")
	}

	s.begin()
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.auth.CurrentUser(ctx, token)

	s.mu.Lock()
	if s.creds.Token() != token {
		// A login or logout happened meanwhile; its outcome stands.
		s.mu.Unlock()
		if err != nil {
			return cl.User{}, err
		}
		return userOf(res), nil
	}
	if err != nil {
		s.clearLocked(context.WithoutCancel(ctx))
		s.status = StatusFailed
		s.err = cl.Message(err, msgUserFailed)
		s.mu.Unlock()
		s.notify()
		s.signedOut()
		s.logger.Info("[FetchCurrentUser] persisted session rejected", "details", err.Error())
		return cl.User{}, err
	}
	s.user = res.User
	s.status = StatusSucceeded
	s.err = ""
	s.persist(ctx, token, res.User)
	s.mu.Unlock()
	s.notify()
	return userOf(res), nil
}

// Expire drops the session locally, e.g. after another store got a 401.
func (s *Session) Expire(ctx context.Context) {
	s.mu.Lock()
	if s.creds.Token() == "" {
		s.mu.Unlock()
		return
	}
	s.clearLocked(ctx)
	s.status = StatusFailed
	s.err = msgSessionExpired
	s.mu.Unlock()
	s.notify()
	s.signedOut()
	s.logger.Info("[Expire] session expired by the server")
}

// ClearError dismisses the recorded error.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// begin marks an operation in flight. A recorded error stays until the next
// success or ClearError.
func (s *Session) begin() {
	s.mu.Lock()
	s.status = StatusLoading
	s.mu.Unlock()
	s.notify()
}

// fail records err. When signOut is set the local session is cleared too.
func (s *Session) fail(err error, fallback string, signOut bool) {
	s.mu.Lock()
	if signOut {
		s.clearLocked(context.Background())
	}
	s.status = StatusFailed
	s.err = cl.Message(err, fallback)
	s.mu.Unlock()
	s.notify()
	if signOut {
		s.signedOut()
	}
}

// OnSignOut registers fn to run whenever the session ends: logout, expiry
// or a rejected token. Stores holding per-user data register their Reset.
func (s *Session) OnSignOut(fn func()) {
	s.mu.Lock()
	s.signOuts = append(s.signOuts, fn)
	s.mu.Unlock()
}

// signedOut runs the sign-out hooks. s.mu must not be held.
func (s *Session) signedOut() {
	s.mu.Lock()
	hooks := append([]func(){}, s.signOuts...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// clearLocked forgets token and user in memory and in storage. s.mu must
// be held.
func (s *Session) clearLocked(ctx context.Context) {
	s.creds.clear()
	s.user = nil
	for _, key := range []string{StorageKeyToken, StorageKeyUser} {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			s.logger.Error("[clearLocked] unable to remove persisted session", "key", key, "details", err.Error())
		}
	}
}

// persist writes token and user to storage. Failures are logged: the
// in-memory session is authoritative for this run. s.mu must be held.
func (s *Session) persist(ctx context.Context, token string, user *cl.User) {
	if err := s.storage.SetItem(ctx, StorageKeyToken, token); err != nil {
		s.logger.Error("[persist] unable to persist token", "details", err.Error())
	}
	if user == nil {
		if err := s.storage.RemoveItem(ctx, StorageKeyUser); err != nil {
			s.logger.Error("[persist] unable to remove user snapshot", "details", err.Error())
		}
		return
	}
	var buf bytes.Buffer
	if err := jsonutils.Encode(&buf, user, ""); err != nil {
		s.logger.Error("[persist] unable to encode user snapshot", "details", err.Error())
		return
	}
	if err := s.storage.SetItem(ctx, StorageKeyUser, strings.TrimSpace(buf.String())); err != nil {
		s.logger.Error("[persist] unable to persist user snapshot", "details", err.Error())
	}
}

func userOf(res cl.UserRes) cl.User {
	if res.User == nil {
		return cl.User{}
	}
	return *res.User
}
