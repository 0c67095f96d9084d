package mock

import (
	"context"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"
)

var _ internal.AuthService = (*AuthService)(nil)
var _ internal.ProfileService = (*ProfileService)(nil)

// AuthService implements the AuthService interface for mocking purposes.
type AuthService struct {
	RegisterFn    func(ctx context.Context, req cl.RegisterRequest) (cl.UserRes, error)
	LoginFn       func(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error)
	LogoutFn      func(ctx context.Context, token string) error
	CurrentUserFn func(ctx context.Context, token string) (cl.UserRes, error)
}

// Register proxies the request to the injected RegisterFn.
func (s *AuthService) Register(ctx context.Context, req cl.RegisterRequest) (cl.UserRes, error) {
	return s.RegisterFn(ctx, req)
}

// Login proxies the request to the injected LoginFn.
func (s *AuthService) Login(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
	return s.LoginFn(ctx, req)
}

// Logout proxies the request to the injected LogoutFn.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.LogoutFn(ctx, token)
}

// CurrentUser proxies the request to the injected CurrentUserFn.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (cl.UserRes, error) {
	return s.CurrentUserFn(ctx, token)
}

// ProfileService implements the ProfileService interface for mocking purposes.
type ProfileService struct {
	GetProfileFn     func(ctx context.Context) (cl.UserRes, error)
	UpdateProfileFn  func(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error)
	UpdatePasswordFn func(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error)
}

// GetProfile proxies the request to the injected GetProfileFn.
func (s *ProfileService) GetProfile(ctx context.Context) (cl.UserRes, error) {
	return s.GetProfileFn(ctx)
}

// UpdateProfile proxies the request to the injected UpdateProfileFn.
func (s *ProfileService) UpdateProfile(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error) {
	return s.UpdateProfileFn(ctx, req)
}

// UpdatePassword proxies the request to the injected UpdatePasswordFn.
func (s *ProfileService) UpdatePassword(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error) {
	return s.UpdatePasswordFn(ctx, req)
}
