package state

import (
	"context"
	"net/http"
	"testing"

	"photo-albums/internal/mock"
	cl "photo-albums/pkg/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	tm "github.com/twitsprout/tools/mock"
	"gopkg.in/guregu/null.v3"
)

func TestProfileUpdate(t *testing.T) {
	table := []struct {
		label      string
		req        cl.UpdateProfileRequest
		updateFn   func(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error)
		expUser    *cl.User
		expStatus  RequestStatus
		expMessage string
		expErr     string
	}{
		{
			label:     "should reject a blank name",
			req:       cl.UpdateProfileRequest{Name: " "},
			expStatus: StatusFailed,
			expErr:    cl.ErrMissingName.Error(),
		},
		{
			label: "should surface the server message",
			req:   cl.UpdateProfileRequest{Name: "Jane"},
			updateFn: func(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error) {
				return cl.UserRes{}, &cl.APIError{Status: http.StatusConflict, Message: "Name taken"}
			},
			expStatus: StatusFailed,
			expErr:    "Name taken",
		},
		{
			label: "should store the canonical profile",
			req:   cl.UpdateProfileRequest{Name: " Jane ", ProfilePicture: "http://pics/j.png"},
			updateFn: func(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error) {
				return cl.UserRes{User: &cl.User{ID: "u1", Name: req.Name, Username: "jane", ProfilePicture: null.StringFrom(req.ProfilePicture)}}, nil
			},
			expUser:    &cl.User{ID: "u1", Name: "Jane", Username: "jane", ProfilePicture: null.StringFrom("http://pics/j.png")},
			expStatus:  StatusSucceeded,
			expMessage: msgProfileUpdated,
		},
	}
	for _, ts := range table {
		t.Run(ts.label, func(t *testing.T) {
			s := NewProfile(&mock.ProfileService{UpdateProfileFn: ts.updateFn}, Options{Logger: tm.NopLogger})
			s.Update(context.Background(), ts.req)

			st := s.Snapshot()
			if diff := cmp.Diff(ts.expUser, st.User); diff != "" {
				t.Fatalf("unexpected user: %s", diff)
			}
			if st.Status != ts.expStatus {
				t.Fatalf("unexpected status: %s", cmp.Diff(ts.expStatus, st.Status))
			}
			if st.Message != ts.expMessage || st.Error != ts.expErr {
				t.Fatalf("unexpected messages %q %q", st.Message, st.Error)
			}
			if st.PasswordStatus != StatusIdle {
				t.Fatalf("expected the password status to be independent, got %s", st.PasswordStatus)
			}
		})
	}
}

func TestProfileUpdatePassword(t *testing.T) {
	table := []struct {
		label      string
		current    string
		next       string
		passwordFn func(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error)
		expMessage string
		expErr     string
	}{
		{
			label:   "should reject a missing password",
			current: "old",
			expErr:  cl.ErrMissingPassword.Error(),
		},
		{
			label:   "should fall back to a generic failure message",
			current: "old",
			next:    "new",
			passwordFn: func(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error) {
				return cl.MessageRes{}, &cl.NetworkError{Err: errors.New("offline")}
			},
			expErr: msgUpdatePasswordFailed,
		},
		{
			label:   "should keep the server confirmation",
			current: "old",
			next:    "new",
			passwordFn: func(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error) {
				return cl.MessageRes{Message: "Password changed"}, nil
			},
			expMessage: "Password changed",
		},
		{
			label:   "should fall back to a generic confirmation",
			current: "old",
			next:    "new",
			passwordFn: func(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error) {
				return cl.MessageRes{}, nil
			},
			expMessage: msgPasswordUpdated,
		},
	}
	for _, ts := range table {
		t.Run(ts.label, func(t *testing.T) {
			s := NewProfile(&mock.ProfileService{UpdatePasswordFn: ts.passwordFn}, Options{Logger: tm.NopLogger})
			s.UpdatePassword(context.Background(), ts.current, ts.next)

			st := s.Snapshot()
			if st.PasswordMessage != ts.expMessage || st.PasswordError != ts.expErr {
				t.Fatalf("unexpected password messages %q %q", st.PasswordMessage, st.PasswordError)
			}
			if st.Status != StatusIdle || st.Error != "" {
				t.Fatalf("expected the profile status to be independent, got %s %q", st.Status, st.Error)
			}

			s.ClearMessages()
			st = s.Snapshot()
			if st.PasswordMessage != "" || st.PasswordError != "" {
				t.Fatalf("expected ClearMessages to clear everything, got %+v", st)
			}
		})
	}
}

func TestProfileFetchAndReset(t *testing.T) {
	svc := &mock.ProfileService{
		GetProfileFn: func(ctx context.Context) (cl.UserRes, error) {
			u := testUser
			return cl.UserRes{User: &u}, nil
		},
	}
	s := NewProfile(svc, Options{Logger: tm.NopLogger})
	user, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error returned from Fetch: %s", err.Error())
	}
	if diff := cmp.Diff(testUser, user); diff != "" {
		t.Fatalf("unexpected user: %s", diff)
	}

	s.Reset()
	if st := s.Snapshot(); st.User != nil || st.Status != StatusIdle {
		t.Fatalf("expected an empty store after Reset, got %+v", st)
	}
}
