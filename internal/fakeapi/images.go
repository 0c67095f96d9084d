package fakeapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	cl "photo-albums/pkg/catalog"

	"github.com/gorilla/mux"
	httputils "github.com/twitsprout/tools/http"
)

const maxUploadMemory = 16 << 20

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request, c caller) {
	v := r.URL.Query()
	images, err := h.Store.ListImages(c.User, mux.Vars(r)["id"], v.Get("tags"))
	if err != nil {
		h.writeError(w, r, "ListImages", err)
		return
	}
	_ = httputils.WriteJSON(w, v, cl.ListImagesRes{Images: images}, http.StatusOK)
}

// UploadImage accepts a multipart form with a "file" part plus the name,
// tags, person and isFavorite fields.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request, c caller) {
	n, err := parseUploadImageRequest(r)
	if err != nil {
		h.writeError(w, r, "UploadImage", err)
		return
	}
	img, err := h.Store.AddImage(c.User, mux.Vars(r)["id"], n)
	if err != nil {
		h.writeError(w, r, "UploadImage", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.ImageRes{Image: &img}, http.StatusCreated)
}

func parseUploadImageRequest(r *http.Request) (NewImage, error) {
	var n NewImage
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return n, badRequest("[parseUploadImageRequest] invalid multipart form: " + err.Error())
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return n, badRequest("[parseUploadImageRequest] file must be provided")
	}
	defer file.Close()
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		return n, badRequest("[parseUploadImageRequest] unreadable file: " + err.Error())
	}

	n = NewImage{
		Name:     r.FormValue("name"),
		FileName: header.Filename,
		Person:   strings.TrimSpace(r.FormValue("person")),
		Size:     size,
	}
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			n.Tags = append(n.Tags, t)
		}
	}
	if fav := r.FormValue("isFavorite"); fav != "" {
		b, err := strconv.ParseBool(fav)
		if err != nil {
			return n, badRequest("[parseUploadImageRequest] isFavorite must be a boolean")
		}
		n.IsFavorite = b
	}
	return n, nil
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request, c caller) {
	vars := mux.Vars(r)
	img, err := h.Store.ToggleFavorite(c.User, vars["id"], vars["imageID"])
	if err != nil {
		h.writeError(w, r, "ToggleFavorite", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.ImageRes{Image: &img}, http.StatusOK)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request, c caller) {
	vars := mux.Vars(r)
	img, err := h.Store.DeleteImage(c.User, vars["id"], vars["imageID"])
	if err != nil {
		h.writeError(w, r, "DeleteImage", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.ImageRes{Image: &img}, http.StatusOK)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request, c caller) {
	var req cl.AddCommentRequest
	if err := httputils.ReadJSON(r.Body, &req); err != nil {
		h.writeError(w, r, "AddComment", badRequest(err.Error()))
		return
	}
	vars := mux.Vars(r)
	comment, err := h.Store.AddComment(c.User, vars["id"], vars["imageID"], req)
	if err != nil {
		h.writeError(w, r, "AddComment", err)
		return
	}
	_ = httputils.WriteJSON(w, r.URL.Query(), cl.CommentRes{Comment: &comment}, http.StatusCreated)
}

// SearchImages searches every album the caller can read.
func (h *Handler) SearchImages(w http.ResponseWriter, r *http.Request, c caller) {
	v := r.URL.Query()
	q := cl.SearchQuery{
		Query:  v.Get("query"),
		Tags:   v.Get("tags"),
		Person: v.Get("person"),
	}
	if fav := v.Get("favorite"); fav != "" {
		q.Favorite, _ = strconv.ParseBool(fav)
	}
	res := cl.ListImagesRes{Images: h.Store.SearchImages(c.User, q)}
	_ = httputils.WriteJSON(w, v, res, http.StatusOK)
}
