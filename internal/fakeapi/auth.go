package fakeapi

import (
	"net/http"
	"strings"

	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
	httputils "github.com/twitsprout/tools/http"
	"github.com/twitsprout/tools/requestid"
)

// caller is the authenticated user of a request.
type caller struct {
	cl.User
	token string
}

type authedHandlerFunc func(w http.ResponseWriter, r *http.Request, c caller)

// authenticated resolves the bearer token before calling fn.
func (h *Handler) authenticated(fn authedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(w, r, "authenticated", unauthorized("Not authorized, no token"))
			return
		}
		user, err := h.Store.Authenticate(token)
		if err != nil {
			h.writeError(w, r, "authenticated", err)
			return
		}
		fn(w, r, caller{User: user, token: token})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req cl.RegisterRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "Register", badRequest(err.Error()))
		return
	}
	user, err := h.Store.Register(req)
	if err != nil {
		h.writeError(w, r, "Register", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.UserRes{User: &user}, http.StatusCreated)
}

// Login exchanges credentials for a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req cl.LoginRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "Login", badRequest(err.Error()))
		return
	}
	res, err := h.Store.Login(req)
	if err != nil {
		h.writeError(w, r, "Login", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), res, http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, c caller) {
	h.Store.Logout(c.token)
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.MessageRes{Message: "Logged out"}, http.StatusOK)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, c caller) {
	user := c.User
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.UserRes{User: &user}, http.StatusOK)
}

// writeError answers with the API error envelope. Client errors are logged
// as warnings, anything else as errors.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := http.StatusInternalServerError
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		code = apiErr.Code
	}
	reqID := requestid.Get(r.Context())
	if code >= http.StatusInternalServerError {
		h.Logger.Error("["+op+"] request failed", "request_id", reqID, "details", err.Error())
	} else {
		h.Logger.Warn("["+op+"] request rejected", "request_id", reqID, "code", code, "details", err.Error())
	}
	_ = httputils.WriteJSONError(w, r.URL.Query(), err.Error(), code)
}
