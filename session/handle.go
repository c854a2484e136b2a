package session

import "context"

// Handle is the request-scoped view of one requester's session. It is the
// only way login code touches session state: IsActive, SetIdentity and
// Refresh are its whole capability surface.
//
// Refresh rotates the session id. The data is written under the new id
// before the old id is deleted, so a stale in-flight request holding the old
// id sees at worst a bounded window where both ids resolve, never a window
// where neither does.
type Handle struct {
	store  Store
	id     string
	data   *Data
	active bool
}

// Open loads the session identified by id, which may be empty when the
// requester carries no session cookie.
func Open(ctx context.Context, store Store, id string) (*Handle, error) {
	h := &Handle{store: store, id: id}
	if id == "" {
		return h, nil
	}

	data, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if data != nil {
		h.data = data
		h.active = data.TeamID != 0
	}
	return h, nil
}

// ID returns the current session id, empty until the first Refresh or
// SetIdentity.
func (h *Handle) ID() string {
	return h.id
}

// IsActive reports whether an authenticated session already exists for this
// requester.
func (h *Handle) IsActive() bool {
	return h.active
}

// Identity returns the session data, or nil when the session is not active.
func (h *Handle) Identity() *Data {
	return h.data
}

// Refresh rotates the session id, carrying existing data over to the new id.
func (h *Handle) Refresh(ctx context.Context) error {
	newID, err := NewID()
	if err != nil {
		return err
	}

	if h.data != nil {
		if err := h.store.Save(ctx, newID, h.data, DefaultTTL); err != nil {
			return err
		}
	}
	if h.id != "" {
		if err := h.store.Delete(ctx, h.id); err != nil {
			return err
		}
	}

	h.id = newID
	return nil
}

// SetIdentity records the authenticated team on the session and persists it.
func (h *Handle) SetIdentity(ctx context.Context, data Data) error {
	if h.id == "" {
		id, err := NewID()
		if err != nil {
			return err
		}
		h.id = id
	}

	h.data = &data
	h.active = data.TeamID != 0
	return h.store.Save(ctx, h.id, h.data, DefaultTTL)
}
