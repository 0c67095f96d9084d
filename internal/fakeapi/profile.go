package fakeapi

import (
	"net/http"

	cl "photo-albums/pkg/catalog"

	httputils "github.com/twitsprout/tools/http"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request, c caller) {
	user := c.User
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.UserRes{User: &user}, http.StatusOK)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, c caller) {
	var req cl.UpdateProfileRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "UpdateProfile", badRequest(err.Error()))
		return
	}
	user, err := h.Store.UpdateProfile(c.User, req)
	if err != nil {
		h.writeError(w, r, "UpdateProfile", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.UserRes{User: &user}, http.StatusOK)
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request, c caller) {
	var req cl.UpdatePasswordRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "UpdatePassword", badRequest(err.Error()))
		return
	}
	if err := h.Store.UpdatePassword(c.User, req); err != nil {
		h.writeError(w, r, "UpdatePassword", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.MessageRes{Message: "Password updated successfully"}, http.StatusOK)
}
