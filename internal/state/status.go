package state

import (
	"sort"
	"time"
)

// RequestStatus is the lifecycle of one remote operation.
type RequestStatus int

const (
	StatusIdle RequestStatus = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s RequestStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// OpKind names an operation a store performs.
type OpKind string

const (
	OpLogin       OpKind = "login"
	OpRegister    OpKind = "register"
	OpLogout      OpKind = "logout"
	OpCurrentUser OpKind = "current_user"

	OpList       OpKind = "list"
	OpListShared OpKind = "list_shared"
	OpFetch      OpKind = "fetch"
	OpCreate     OpKind = "create"
	OpUpdate     OpKind = "update"
	OpDelete     OpKind = "delete"
	OpShare      OpKind = "share"

	OpUpload   OpKind = "upload"
	OpFavorite OpKind = "favorite"
	OpComment  OpKind = "comment"
	OpSearch   OpKind = "search"

	OpPassword OpKind = "password"
)

// OpKey identifies one operation on one entity. Collection-wide operations
// (list, search, create) use an empty EntityID, uploads use the album id.
type OpKey struct {
	EntityID string
	Kind     OpKind
}

// OpState is the status of the latest run of an OpKey.
type OpState struct {
	Status    RequestStatus
	Error     string
	UpdatedAt time.Time
}

// Failure is an undismissed error, ready to render as a banner.
type Failure struct {
	Key     OpKey
	Message string
}

// tracker records per-operation status. It is not safe for concurrent use;
// the owning store guards it with its own mutex.
type tracker struct {
	ops  map[OpKey]OpState
	last OpKey
}

func newTracker() tracker {
	return tracker{ops: make(map[OpKey]OpState)}
}

// pending reports whether key is in the in-flight set.
func (t *tracker) pending(key OpKey) bool {
	return t.ops[key].Status == StatusLoading
}

// acquire marks key in flight unless it already is. Used by mutations that
// allow at most one outstanding request per entity field.
func (t *tracker) acquire(key OpKey) bool {
	if t.pending(key) {
		return false
	}
	t.start(key)
	return true
}

// start marks key in flight. A previous error for the key stays visible
// until the run succeeds.
func (t *tracker) start(key OpKey) {
	st := t.ops[key]
	st.Status = StatusLoading
	st.UpdatedAt = time.Now()
	t.ops[key] = st
	t.last = key
}

func (t *tracker) succeed(key OpKey) {
	t.ops[key] = OpState{Status: StatusSucceeded, UpdatedAt: time.Now()}
	t.last = key
}

func (t *tracker) fail(key OpKey, msg string) {
	t.ops[key] = OpState{Status: StatusFailed, Error: msg, UpdatedAt: time.Now()}
	t.last = key
}

// reset drops key entirely, e.g. once its entity is gone.
func (t *tracker) reset(key OpKey) {
	delete(t.ops, key)
}

// dismiss clears a recorded error without touching the status.
func (t *tracker) dismiss(key OpKey) {
	st, ok := t.ops[key]
	if !ok {
		return
	}
	st.Error = ""
	t.ops[key] = st
}

// status is the coarse store-wide status: the state of the most recently
// transitioned operation.
func (t *tracker) status() (RequestStatus, string) {
	st, ok := t.ops[t.last]
	if !ok {
		return StatusIdle, ""
	}
	return st.Status, st.Error
}

func (t *tracker) snapshot() map[OpKey]OpState {
	out := make(map[OpKey]OpState, len(t.ops))
	for k, v := range t.ops {
		out[k] = v
	}
	return out
}

// failures lists undismissed errors, oldest first.
func (t *tracker) failures() []Failure {
	var out []Failure
	for k, v := range t.ops {
		if v.Error != "" {
			out = append(out, Failure{Key: k, Message: v.Error})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := t.ops[out[i].Key].UpdatedAt, t.ops[out[j].Key].UpdatedAt
		if a.Equal(b) {
			if out[i].Key.Kind == out[j].Key.Kind {
				return out[i].Key.EntityID < out[j].Key.EntityID
			}
			return out[i].Key.Kind < out[j].Key.Kind
		}
		return a.Before(b)
	})
	return out
}
