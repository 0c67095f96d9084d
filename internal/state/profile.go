package state

import (
	"context"
	"strings"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

const (
	msgFetchProfileFailed   = "Failed to fetch profile"
	msgUpdateProfileFailed  = "Failed to update profile"
	msgUpdatePasswordFailed = "Failed to update password"
	msgProfileUpdated       = "Profile updated successfully"
	msgPasswordUpdated      = "Password updated successfully"
)

var (
	profileFetchKey  = OpKey{Kind: OpFetch}
	profileUpdateKey = OpKey{Kind: OpUpdate}
	passwordKey      = OpKey{Kind: OpPassword}
)

// ProfileState is a copy of the profile store visible to callers. Profile
// and password changes report their status and messages separately.
type ProfileState struct {
	User    *cl.User
	Status  RequestStatus
	Error   string
	Message string

	PasswordStatus  RequestStatus
	PasswordError   string
	PasswordMessage string

	Ops map[OpKey]OpState
}

// Profile is the resource store for the signed-in user's own profile.
type Profile struct {
	resource

	api             internal.ProfileService
	user            *cl.User
	message         string
	passwordMessage string
}

func NewProfile(api internal.ProfileService, opts Options) *Profile {
	return &Profile{resource: newResource(opts), api: api}
}

// Snapshot returns a copy of the current state.
func (s *Profile) Snapshot() ProfileState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ProfileState{
		Message:         s.message,
		PasswordMessage: s.passwordMessage,
		Ops:             s.ops.snapshot(),
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	// The profile status follows whichever of fetch and update ran last.
	fetch, update := st.Ops[profileFetchKey], st.Ops[profileUpdateKey]
	latest := fetch
	if update.UpdatedAt.After(fetch.UpdatedAt) {
		latest = update
	}
	st.Status, st.Error = latest.Status, latest.Error
	pw := st.Ops[passwordKey]
	st.PasswordStatus, st.PasswordError = pw.Status, pw.Error
	return st
}

func (s *Profile) Fetch(ctx context.Context) (cl.User, error) {
	s.begin(profileFetchKey)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.GetProfile(tctx)
	if err == nil && res.User == nil {
		err = errors.New("response carried no user")
	}
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(profileFetchKey, err, msgFetchProfileFailed)
		return cl.User{}, err
	}
	user := *res.User
	s.succeed(profileFetchKey, func() { s.user = &user })
	return user, nil
}

// Update changes the display name and picture of the profile.
func (s *Profile) Update(ctx context.Context, req cl.UpdateProfileRequest) (cl.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ProfilePicture = strings.TrimSpace(req.ProfilePicture)
	if req.Name == "" {
		s.fail(profileUpdateKey, cl.ErrMissingName, msgUpdateProfileFailed)
		return cl.User{}, errors.Wrap(cl.ErrMissingName, "update profile")
	}
	if !s.acquire(profileUpdateKey) {
		return cl.User{}, errors.Wrap(cl.ErrOperationPending, "update profile")
	}
	s.setMessage(&s.message, "")
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.UpdateProfile(tctx, req)
	if err == nil && res.User == nil {
		err = errors.New("response carried no user")
	}
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(profileUpdateKey, err, msgUpdateProfileFailed)
		return cl.User{}, err
	}
	user := *res.User
	s.succeed(profileUpdateKey, func() {
		s.user = &user
		s.message = msgProfileUpdated
	})
	return user, nil
}

// UpdatePassword changes the account password. The server's confirmation
// message is kept for display.
func (s *Profile) UpdatePassword(ctx context.Context, current, next string) error {
	if current == "" || next == "" {
		s.fail(passwordKey, cl.ErrMissingPassword, msgUpdatePasswordFailed)
		return errors.Wrap(cl.ErrMissingPassword, "update password")
	}
	if !s.acquire(passwordKey) {
		return errors.Wrap(cl.ErrOperationPending, "update password")
	}
	s.setMessage(&s.passwordMessage, "")
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.UpdatePassword(tctx, cl.UpdatePasswordRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(passwordKey, err, msgUpdatePasswordFailed)
		return err
	}
	msg := res.Message
	if msg == "" {
		msg = msgPasswordUpdated
	}
	s.succeed(passwordKey, func() { s.passwordMessage = msg })
	return nil
}

// ClearMessages dismisses every success message and error of the store.
func (s *Profile) ClearMessages() {
	s.mu.Lock()
	s.message, s.passwordMessage = "", ""
	for _, key := range []OpKey{profileFetchKey, profileUpdateKey, passwordKey} {
		s.ops.dismiss(key)
	}
	s.mu.Unlock()
	s.notify()
}

// Reset forgets the loaded profile, e.g. after the session ended.
func (s *Profile) Reset() {
	s.mu.Lock()
	s.user = nil
	s.message, s.passwordMessage = "", ""
	s.ops = newTracker()
	s.mu.Unlock()
	s.notify()
}

func (s *Profile) setMessage(field *string, msg string) {
	s.mu.Lock()
	*field = msg
	s.mu.Unlock()
}
