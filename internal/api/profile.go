package api

import (
	"context"
	"net/http"

	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

func (c *Client) GetProfile(ctx context.Context) (cl.UserRes, error) {
	var res cl.UserRes
	err := c.doJSON(ctx, http.MethodGet, path("profile"), c.token(), nil, &res)
	return res, errors.Wrap(err, "get profile")
}

func (c *Client) UpdateProfile(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error) {
	var res cl.UserRes
	err := c.doJSON(ctx, http.MethodPut, path("profile"), c.token(), req, &res)
	return res, errors.Wrap(err, "update profile")
}

func (c *Client) UpdatePassword(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error) {
	var res cl.MessageRes
	err := c.doJSON(ctx, http.MethodPut, path("profile", "password"), c.token(), req, &res)
	return res, errors.Wrap(err, "update password")
}
