package state

import (
	"context"
	"net/http"
	"time"

	cl "photo-albums/pkg/catalog"

	"github.com/twitsprout/tools"
)

// DefaultTimeout bounds every store operation when Options.Timeout is zero.
const DefaultTimeout = 20 * time.Second

// Expirer tears down the local session without a network call.
type Expirer interface {
	Expire(ctx context.Context)
}

// Options are shared by the resource stores.
type Options struct {
	Logger  tools.Logger
	Timeout time.Duration
	// Session is expired whenever an operation is rejected with a 401.
	Session Expirer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.Timeout)
}

// onAuthFailure expires the session when err is a 401.
func (o Options) onAuthFailure(ctx context.Context, err error) {
	if o.Session == nil || cl.KindOf(err) != cl.KindAuthentication {
		return
	}
	o.Session.Expire(context.WithoutCancel(ctx))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Handler() http.Handler        { return nil }
