package fakeapi

import (
	"github.com/gorilla/mux"
	"github.com/twitsprout/tools"
)

type Handler struct {
	AppName string
	Version string
	router  *mux.Router
	Logger  tools.Logger
	Store   *Memory
	// Replays holds responses to mutating requests by idempotency key.
	Replays *ReplayCache
}
