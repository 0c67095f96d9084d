package fakeapi

import (
	"net/http"

	cl "photo-albums/pkg/catalog"

	"github.com/gorilla/mux"
	httputils "github.com/twitsprout/tools/http"
)

// ListAlbums lists the albums owned by the caller.
func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request, c caller) {
	res := cl.ListAlbumsRes{Albums: h.Store.ListAlbums(c.User)}
	_ = httputils.WriteJSON(w, r.URL.Query(), res, http.StatusOK)
}

// ListSharedAlbums lists the albums other users shared with the caller.
func (h *Handler) ListSharedAlbums(w http.ResponseWriter, r *http.Request, c caller) {
	res := cl.ListAlbumsRes{Albums: h.Store.ListSharedAlbums(c.User)}
	_ = httputils.WriteJSON(w, r.URL.Query(), res, http.StatusOK)
}

func (h *Handler) CreateAlbum(w http.ResponseWriter, r *http.Request, c caller) {
	var req cl.CreateAlbumRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "CreateAlbum", badRequest(err.Error()))
		return
	}
	album, err := h.Store.CreateAlbum(c.User, req)
	if err != nil {
		h.writeError(w, r, "CreateAlbum", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.AlbumRes{Album: &album}, http.StatusCreated)
}

// GetAlbum returns an album the caller owns or has been shared.
func (h *Handler) GetAlbum(w http.ResponseWriter, r *http.Request, c caller) {
	album, err := h.Store.GetAlbum(c.User, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "GetAlbum", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.AlbumRes{Album: &album}, http.StatusOK)
}

func (h *Handler) UpdateAlbum(w http.ResponseWriter, r *http.Request, c caller) {
	var req cl.UpdateAlbumRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "UpdateAlbum", badRequest(err.Error()))
		return
	}
	album, err := h.Store.UpdateAlbum(c.User, mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, "UpdateAlbum", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.AlbumRes{Album: &album}, http.StatusOK)
}

// DeleteAlbum removes an album and its images. The reply carries the id.
func (h *Handler) DeleteAlbum(w http.ResponseWriter, r *http.Request, c caller) {
	album, err := h.Store.DeleteAlbum(c.User, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "DeleteAlbum", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.AlbumRes{Album: &album}, http.StatusOK)
}

func (h *Handler) ShareAlbum(w http.ResponseWriter, r *http.Request, c caller) {
	var req cl.ShareAlbumRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "ShareAlbum", badRequest(err.Error()))
		return
	}
	album, err := h.Store.ShareAlbum(c.User, mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, "ShareAlbum", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.AlbumRes{Album: &album}, http.StatusOK)
}
