package fakeapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httputils "github.com/twitsprout/tools/http"
)

// PathPrefix is where the API is mounted.
const PathPrefix = "/api"

// Handler mounts all the handlers at the appropriate routes and adds any required middleware.
func (h *Handler) Handler() http.Handler {
	r := mux.NewRouter()

	r.Use(httputils.TimeoutMiddleware(1 * time.Minute))
	r.Use(httputils.RequestIDMiddleware)
	r.Use(httputils.RealIPMiddleware)
	r.Use(httputils.LimitReaderMiddleware(32 << 20))
	r.Use(httputils.LoggingMiddleware(h.Logger))
	r.Use(httputils.RecoverMiddleware(h.Logger, httputils.InternalServerErrorHandler(h.Logger)))
	r.Use(httputils.ConcurrentLimitMiddleware(250, httputils.ServiceUnavailableHandler(h.Logger)))

	r.MethodNotAllowedHandler = httputils.MethodNotAllowedHandler(h.Logger)
	r.NotFoundHandler = httputils.NotFoundHandler(h.Logger)

	versionHandler := httputils.VersionHandler(h.AppName, h.Version, h.Logger)
	r.Methods("GET").Path("/").Name("root").Handler(versionHandler)
	r.Methods("GET").Path("/version").Name("version").Handler(versionHandler)

	api := r.PathPrefix(PathPrefix).Subrouter()
	if h.Replays != nil {
		api.Use(h.Replays.Middleware)
	}

	api.Methods("POST").Path("/auth/register").Name("register").HandlerFunc(h.Register)
	api.Methods("POST").Path("/auth/login").Name("login").HandlerFunc(h.Login)
	api.Methods("POST").Path("/auth/logout").Name("logout").HandlerFunc(h.authenticated(h.Logout))
	api.Methods("GET").Path("/auth/me").Name("me").HandlerFunc(h.authenticated(h.Me))

	api.Methods("GET").Path("/profile").Name("get_profile").HandlerFunc(h.authenticated(h.GetProfile))
	api.Methods("PUT").Path("/profile").Name("update_profile").HandlerFunc(h.authenticated(h.UpdateProfile))
	api.Methods("PUT").Path("/profile/password").Name("update_password").HandlerFunc(h.authenticated(h.UpdatePassword))

	api.Methods("GET").Path("/albums").Name("list_albums").HandlerFunc(h.authenticated(h.ListAlbums))
	api.Methods("GET").Path("/albums/shared").Name("list_shared_albums").HandlerFunc(h.authenticated(h.ListSharedAlbums))
	api.Methods("POST").Path("/albums").Name("create_album").HandlerFunc(h.authenticated(h.CreateAlbum))
	api.Methods("GET").Path("/albums/{id}").Name("get_album").HandlerFunc(h.authenticated(h.GetAlbum))
	api.Methods("PUT").Path("/albums/{id}").Name("update_album").HandlerFunc(h.authenticated(h.UpdateAlbum))
	api.Methods("DELETE").Path("/albums/{id}").Name("delete_album").HandlerFunc(h.authenticated(h.DeleteAlbum))
	api.Methods("POST").Path("/albums/{id}/share").Name("share_album").HandlerFunc(h.authenticated(h.ShareAlbum))

	api.Methods("GET").Path("/albums/{id}/images").Name("list_images").HandlerFunc(h.authenticated(h.ListImages))
	api.Methods("POST").Path("/albums/{id}/images").Name("upload_image").HandlerFunc(h.authenticated(h.UploadImage))
	api.Methods("PUT").Path("/albums/{id}/images/{imageID}/favorite").Name("toggle_favorite").HandlerFunc(h.authenticated(h.ToggleFavorite))
	api.Methods("DELETE").Path("/albums/{id}/images/{imageID}").Name("delete_image").HandlerFunc(h.authenticated(h.DeleteImage))
	api.Methods("POST").Path("/albums/{id}/images/{imageID}/comments").Name("add_comment").HandlerFunc(h.authenticated(h.AddComment))

	api.Methods("GET").Path("/search/images").Name("search_images").HandlerFunc(h.authenticated(h.SearchImages))
	h.router = r
	return r
}
