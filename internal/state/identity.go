package state

import cl "photo-albums/pkg/catalog"

// CurrentUser merges the user known to the session with the profile loaded
// by the profile store. Profile fields that are set take precedence;
// anything else falls back to the session's copy. A profile that belongs
// to another user is ignored. Either argument may be nil; the result is nil
// only when both are.
func CurrentUser(auth, profile *cl.User) *cl.User {
	if auth == nil && profile == nil {
		return nil
	}
	var u cl.User
	if auth != nil {
		u = *auth
	}
	if profile == nil || (auth != nil && profile.ID != "" && profile.ID != auth.ID) {
		return &u
	}
	if profile.ID != "" {
		u.ID = profile.ID
	}
	if profile.Name != "" {
		u.Name = profile.Name
	}
	if profile.Username != "" {
		u.Username = profile.Username
	}
	if profile.ProfilePicture.Valid {
		u.ProfilePicture = profile.ProfilePicture
	}
	return &u
}
