package recorder

import "errors"

var (
	// ErrInvalidRequest covers malformed input: missing target, bad JSON.
	ErrInvalidRequest = errors.New("recorder: invalid request")

	// ErrNoDocument is returned when a request carries neither HTML nor a URL.
	ErrNoDocument = errors.New("recorder: no document: provide html or url")

	// ErrTargetNotFound is returned when the target locator matches nothing.
	ErrTargetNotFound = errors.New("recorder: target not found")

	// ErrUnknownScope is returned for scopes other than "document" and "frame".
	ErrUnknownScope = errors.New("recorder: unknown scope")

	// ErrNotFrame is returned when frame scope targets a non-frame element.
	ErrNotFrame = errors.New("recorder: target is not a frame or iframe")

	// ErrRenderUnavailable is returned when rendering is requested but the
	// browser is disabled.
	ErrRenderUnavailable = errors.New("recorder: browser rendering is disabled")

	// ErrFetch wraps acquisition failures of remote pages.
	ErrFetch = errors.New("recorder: fetch failed")
)
