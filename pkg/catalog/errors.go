package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")
var ErrNotAuthenticated = errors.New("no authentication token found")
var ErrOperationPending = errors.New("operation already in progress")

var ErrMissingName = errors.New("name must be provided")
var ErrMissingCredentials = errors.New("username and password must be provided")
var ErrMissingUsernames = errors.New("at least one username must be provided")
var ErrMissingCommentText = errors.New("comment text must be provided")
var ErrMissingFile = errors.New("file must be provided")
var ErrMissingPassword = errors.New("current and new password must be provided")

// Kind classifies a failure for the stores' recovery policy.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation blocks a request locally, or is a 400/409/422 reply.
	KindValidation
	// KindAuthentication is a 401; the session is torn down.
	KindAuthentication
	// KindAuthorization is a 403; surfaced without state mutation.
	KindAuthorization
	// KindNotFound is a 404; stale local lists are refreshed.
	KindNotFound
	// KindServer is a 5xx reply.
	KindServer
	// KindNetwork covers transport failures and timeouts.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// APIError is a non-2xx reply from the remote API.
type APIError struct {
	Status  int
	Message string
	Path    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// Kind maps the HTTP status onto the error taxonomy.
func (e *APIError) Kind() Kind {
	switch {
	case e.Status == http.StatusUnauthorized:
		return KindAuthentication
	case e.Status == http.StatusForbidden:
		return KindAuthorization
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status >= 500:
		return KindServer
	case e.Status >= 400:
		return KindValidation
	default:
		return KindUnknown
	}
}

// NetworkError wraps a transport failure: the request never produced a reply.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

var validationErrors = []error{
	ErrMissingName,
	ErrMissingCredentials,
	ErrMissingUsernames,
	ErrMissingCommentText,
	ErrMissingFile,
	ErrMissingPassword,
	ErrNotAuthenticated,
}

// KindOf classifies err. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return KindValidation
		}
	}
	return KindUnknown
}

// Message returns the message a user should see for err: the server's
// message when the reply carried one, the validation text for local
// rejections, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return v.Error()
		}
	}
	return fallback
}
