package api

import (
	"context"
	"net/http"

	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, req cl.RegisterRequest) (cl.UserRes, error) {
	var res cl.UserRes
	if err := c.doJSON(ctx, http.MethodPost, path("auth", "register"), "", req, &res); err != nil {
		return res, errors.Wrap(err, "register")
	}
	return res, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error) {
	var res cl.LoginRes
	if err := c.doJSON(ctx, http.MethodPost, path("auth", "login"), "", req, &res); err != nil {
		return res, errors.Wrap(err, "login")
	}
	if res.Token == "" {
		return res, errors.New("login: response carried no token")
	}
	return res, nil
}

// Logout invalidates token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	err := c.doJSON(ctx, http.MethodPost, path("auth", "logout"), token, nil, nil)
	return errors.Wrap(err, "logout")
}

// CurrentUser validates token and returns the user it belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (cl.UserRes, error) {
	var res cl.UserRes
	if err := c.doJSON(ctx, http.MethodGet, path("auth", "me"), token, nil, &res); err != nil {
		return res, errors.Wrap(err, "current user")
	}
	if res.User == nil {
		return res, errors.New("current user: response carried no user")
	}
	return res, nil
}
