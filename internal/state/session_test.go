package state

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"photo-albums/internal/mock"
	cl "photo-albums/pkg/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	jsonutils "github.com/twitsprout/tools/json"
	tm "github.com/twitsprout/tools/mock"
)

var testUser = cl.User{ID: "u1", Name: "Jane Doe", Username: "jane"}

func newTestSession(auth *mock.AuthService, storage *mock.Storage) (*Session, *Credentials) {
	creds := &Credentials{}
	return NewSession(auth, creds, storage, Options{Logger: tm.NopLogger}), creds
}

func loginOK(token string) func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
	return func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
		u := testUser
		return cl.LoginRes{Token: token, User: &u}, nil
	}
}

func TestLoginThenLogoutWithNetworkFailure(t *testing.T) {
	var loggedOut string
	auth := &mock.AuthService{
		LoginFn: loginOK("T1"),
		LogoutFn: func(ctx context.Context, token string) error {
			loggedOut = token
			return &cl.NetworkError{Err: errors.New("connection refused")}
		},
	}
	storage := mock.NewStorage(nil)
	s, creds := newTestSession(auth, storage)

	if err := s.Login(context.Background(), "jane", "secret"); err != nil {
		t.Fatalf("unexpected error returned from Login: %s", err.Error())
	}
	st := s.Snapshot()
	if !st.Authenticated || creds.Token() != "T1" {
		t.Fatalf("expected to be authenticated with T1, got %+v token %q", st, creds.Token())
	}
	if diff := cmp.Diff(&testUser, st.User); diff != "" {
		t.Fatalf("unexpected user: %s", diff)
	}
	if storage.Snapshot()[StorageKeyToken] != "T1" {
		t.Fatalf("expected the token to be persisted, got %v", storage.Snapshot())
	}

	s.Logout(context.Background())

	st = s.Snapshot()
	if st.Authenticated || creds.Token() != "" || st.User != nil {
		t.Fatalf("expected to be signed out, got %+v token %q", st, creds.Token())
	}
	if st.Error != "" {
		t.Fatalf("expected logout failure to be swallowed, got %q", st.Error)
	}
	if loggedOut != "T1" {
		t.Fatalf("expected remote logout with T1, got %q", loggedOut)
	}
	if diff := cmp.Diff(map[string]string{}, storage.Snapshot()); diff != "" {
		t.Fatalf("expected persisted session to be removed: %s", diff)
	}
}

func TestLogin(t *testing.T) {
	table := []struct {
		label    string
		username string
		password string
		loginFn  func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error)
		expAuth  bool
		expErr   string
		expKind  cl.Kind
	}{
		{
			label:    "should reject missing credentials without calling the server",
			username: "  ",
			password: "secret",
			expErr:   cl.ErrMissingCredentials.Error(),
			expKind:  cl.KindValidation,
		},
		{
			label:    "should surface the server message",
			username: "jane",
			password: "wrong",
			loginFn: func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
				return cl.LoginRes{}, &cl.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
			},
			expErr:  "Invalid credentials",
			expKind: cl.KindAuthentication,
		},
		{
			label:    "should fall back to a generic message",
			username: "jane",
			password: "secret",
			loginFn: func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
				return cl.LoginRes{}, &cl.NetworkError{Err: errors.New("timeout")}
			},
			expErr:  msgLoginFailed,
			expKind: cl.KindNetwork,
		},
		{
			label:    "should trim the username",
			username: " jane ",
			password: "secret",
			loginFn: func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
				if req.Username != "jane" {
					return cl.LoginRes{}, errors.Errorf("unexpected username %q", req.Username)
				}
				return loginOK("T2")(ctx, req)
			},
			expAuth: true,
		},
	}
	for _, ts := range table {
		t.Run(ts.label, func(t *testing.T) {
			auth := &mock.AuthService{LoginFn: ts.loginFn}
			s, _ := newTestSession(auth, mock.NewStorage(nil))

			err := s.Login(context.Background(), ts.username, ts.password)
			if ts.expKind != cl.KindUnknown {
				if cl.KindOf(err) != ts.expKind {
					t.Fatalf("unexpected error kind: %s", cmp.Diff(ts.expKind, cl.KindOf(err)))
				}
			} else if err != nil {
				t.Fatalf("unexpected error returned from Login: %s", err.Error())
			}
			st := s.Snapshot()
			if st.Authenticated != ts.expAuth {
				t.Fatalf("unexpected authenticated flag: %s", cmp.Diff(ts.expAuth, st.Authenticated))
			}
			if st.Error != ts.expErr {
				t.Fatalf("unexpected error message: %s", cmp.Diff(ts.expErr, st.Error))
			}
		})
	}
}

func TestLoginFailureSignsOut(t *testing.T) {
	calls := 0
	auth := &mock.AuthService{
		LoginFn: func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
			calls++
			if calls == 1 {
				return loginOK("T1")(ctx, req)
			}
			return cl.LoginRes{}, &cl.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
		},
	}
	storage := mock.NewStorage(nil)
	s, creds := newTestSession(auth, storage)

	if err := s.Login(context.Background(), "jane", "secret"); err != nil {
		t.Fatalf("unexpected error returned from Login: %s", err.Error())
	}
	if err := s.Login(context.Background(), "jane", "nope"); err == nil {
		t.Fatalf("expected second login to fail")
	}
	if s.Snapshot().Authenticated || creds.Token() != "" {
		t.Fatalf("expected failed login to leave the client signed out")
	}
	if _, ok := storage.Snapshot()[StorageKeyToken]; ok {
		t.Fatalf("expected persisted token to be removed")
	}
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	auth := &mock.AuthService{
		RegisterFn: func(ctx context.Context, req cl.RegisterRequest) (cl.UserRes, error) {
			u := cl.User{ID: "u2", Name: req.Name, Username: req.Username}
			return cl.UserRes{User: &u}, nil
		},
	}
	s, _ := newTestSession(auth, mock.NewStorage(nil))

	user, err := s.Register(context.Background(), " Sam ", "sam", "pw")
	if err != nil {
		t.Fatalf("unexpected error returned from Register: %s", err.Error())
	}
	if diff := cmp.Diff(cl.User{ID: "u2", Name: "Sam", Username: "sam"}, user); diff != "" {
		t.Fatalf("unexpected user returned: %s", diff)
	}
	st := s.Snapshot()
	if st.Authenticated || st.Status != StatusSucceeded {
		t.Fatalf("unexpected state after register: %+v", st)
	}

	if _, err := s.Register(context.Background(), "", "sam", "pw"); !errors.Is(err, cl.ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
}

func TestRehydrate(t *testing.T) {
	var raw bytes.Buffer
	if err := jsonutils.Encode(&raw, testUser, ""); err != nil {
		t.Fatalf("unexpected error encoding user: %s", err.Error())
	}
	table := []struct {
		label   string
		items   map[string]string
		expAuth bool
		expUser *cl.User
	}{
		{
			label: "should stay signed out without a token",
			items: map[string]string{StorageKeyUser: raw.String()},
		},
		{
			label:   "should restore token and user",
			items:   map[string]string{StorageKeyToken: "T1", StorageKeyUser: raw.String()},
			expAuth: true,
			expUser: &testUser,
		},
		{
			label:   "should keep the token when the user snapshot is unreadable",
			items:   map[string]string{StorageKeyToken: "T1", StorageKeyUser: "{not json"},
			expAuth: true,
		},
	}
	for _, ts := range table {
		t.Run(ts.label, func(t *testing.T) {
			s, _ := newTestSession(&mock.AuthService{}, mock.NewStorage(ts.items))
			if err := s.Rehydrate(context.Background()); err != nil {
				t.Fatalf("unexpected error returned from Rehydrate: %s", err.Error())
			}
			st := s.Snapshot()
			if st.Authenticated != ts.expAuth {
				t.Fatalf("unexpected authenticated flag: %s", cmp.Diff(ts.expAuth, st.Authenticated))
			}
			if diff := cmp.Diff(ts.expUser, st.User); diff != "" {
				t.Fatalf("unexpected user: %s", diff)
			}
		})
	}
}

func TestRehydrateStorageFailure(t *testing.T) {
	storage := mock.NewStorage(nil)
	storage.Err = errors.New("disk on fire")
	s, _ := newTestSession(&mock.AuthService{}, storage)
	if err := s.Rehydrate(context.Background()); err == nil {
		t.Fatalf("expected an error from Rehydrate")
	}
	if s.Snapshot().Authenticated {
		t.Fatalf("expected to stay signed out")
	}
}

func TestFetchCurrentUser(t *testing.T) {
	table := []struct {
		label         string
		token         string
		currentUserFn func(ctx context.Context, token string) (cl.UserRes, error)
		expAuth       bool
		expErr        string
	}{
		{
			label:  "should fail without a token",
			expErr: cl.ErrNotAuthenticated.Error(),
		},
		{
			label: "should sign out on a rejected token",
			token: "T1",
			currentUserFn: func(ctx context.Context, token string) (cl.UserRes, error) {
				return cl.UserRes{}, &cl.APIError{Status: http.StatusUnauthorized, Message: "Token expired"}
			},
			expErr: "Token expired",
		},
		{
			label: "should sign out on a network failure",
			token: "T1",
			currentUserFn: func(ctx context.Context, token string) (cl.UserRes, error) {
				return cl.UserRes{}, &cl.NetworkError{Err: errors.New("offline")}
			},
			expErr: msgUserFailed,
		},
		{
			label: "should refresh the user on success",
			token: "T1",
			currentUserFn: func(ctx context.Context, token string) (cl.UserRes, error) {
				if token != "T1" {
					return cl.UserRes{}, errors.Errorf("unexpected token %q", token)
				}
				u := testUser
				return cl.UserRes{User: &u}, nil
			},
			expAuth: true,
		},
	}
	for _, ts := range table {
		t.Run(ts.label, func(t *testing.T) {
			storage := mock.NewStorage(map[string]string{})
			if ts.token != "" {
				storage.Items[StorageKeyToken] = ts.token
			}
			s, creds := newTestSession(&mock.AuthService{CurrentUserFn: ts.currentUserFn}, storage)
			if err := s.Rehydrate(context.Background()); err != nil {
				t.Fatalf("unexpected error returned from Rehydrate: %s", err.Error())
			}

			_, err := s.FetchCurrentUser(context.Background())
			if (err != nil) != (ts.expErr != "") {
				t.Fatalf("unexpected error returned: %v", err)
			}
			st := s.Snapshot()
			if st.Authenticated != ts.expAuth || (creds.Token() != "") != ts.expAuth {
				t.Fatalf("unexpected state: %+v token %q", st, creds.Token())
			}
			if st.Error != ts.expErr {
				t.Fatalf("unexpected error message: %s", cmp.Diff(ts.expErr, st.Error))
			}
		})
	}
}

func TestFetchCurrentUserKeepsNewerLogin(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	auth := &mock.AuthService{
		LoginFn: loginOK("T2"),
		CurrentUserFn: func(ctx context.Context, token string) (cl.UserRes, error) {
			close(started)
			<-release
			return cl.UserRes{}, &cl.APIError{Status: http.StatusUnauthorized, Message: "Token expired"}
		},
	}
	s, creds := newTestSession(auth, mock.NewStorage(map[string]string{StorageKeyToken: "T1"}))
	if err := s.Rehydrate(context.Background()); err != nil {
		t.Fatalf("unexpected error returned from Rehydrate: %s", err.Error())
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchCurrentUser(context.Background())
	}()
	<-started
	if err := s.Login(context.Background(), "jane", "secret"); err != nil {
		t.Fatalf("unexpected error returned from Login: %s", err.Error())
	}
	close(release)
	<-done

	if creds.Token() != "T2" || !s.Snapshot().Authenticated {
		t.Fatalf("expected the newer login to survive, token %q", creds.Token())
	}
}

func TestExpire(t *testing.T) {
	s, creds := newTestSession(&mock.AuthService{LoginFn: loginOK("T1")}, mock.NewStorage(nil))
	if err := s.Login(context.Background(), "jane", "secret"); err != nil {
		t.Fatalf("unexpected error returned from Login: %s", err.Error())
	}
	updates, cancel := s.Subscribe()
	defer cancel()

	s.Expire(context.Background())

	select {
	case <-updates:
	default:
		t.Fatalf("expected a change notification")
	}
	st := s.Snapshot()
	if st.Authenticated || creds.Token() != "" || st.Error != msgSessionExpired {
		t.Fatalf("unexpected state after Expire: %+v", st)
	}

	s.ClearError()
	if s.Snapshot().Error != "" {
		t.Fatalf("expected ClearError to dismiss the error")
	}
}

func TestSignOutHooks(t *testing.T) {
	ctx := context.Background()
	auth := &mock.AuthService{
		LoginFn:  loginOK("T1"),
		LogoutFn: func(ctx context.Context, token string) error { return nil },
		CurrentUserFn: func(ctx context.Context, token string) (cl.UserRes, error) {
			return cl.UserRes{}, &cl.APIError{Status: http.StatusUnauthorized, Message: "Not authorized, token failed"}
		},
	}
	s, _ := newTestSession(auth, mock.NewStorage(nil))
	var calls int
	s.OnSignOut(func() { calls++ })

	s.Expire(ctx)
	if calls != 0 {
		t.Fatalf("expected no sign-out without a session, got %d", calls)
	}

	steps := []struct {
		label   string
		signOut func()
	}{
		{label: "logout", signOut: func() { s.Logout(ctx) }},
		{label: "expire", signOut: func() { s.Expire(ctx) }},
		{label: "rejected token", signOut: func() { _, _ = s.FetchCurrentUser(ctx) }},
	}
	for i, step := range steps {
		if err := s.Login(ctx, "jane", "secret"); err != nil {
			t.Fatalf("unexpected error returned from Login: %s", err.Error())
		}
		step.signOut()
		if calls != i+1 {
			t.Fatalf("%s: expected %d sign-outs, got %d", step.label, i+1, calls)
		}
	}
}
