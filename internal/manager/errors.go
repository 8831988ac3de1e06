package manager

import "modelmgrd/internal/download"

// modelNotFoundError indicates the requested model id is not registered.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether err indicates a missing model id, so the
// HTTP layer can return 404.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// notLoadedError indicates an unload of a model with no live handle. It is
// a no-op signal, mapped to 400 at the HTTP layer.
type notLoadedError struct{ id string }

func (e notLoadedError) Error() string { return "model not loaded: " + e.id }

// ErrNotLoaded constructs a notLoadedError.
func ErrNotLoaded(id string) error { return notLoadedError{id: id} }

// IsNotLoaded reports whether err indicates the model had no loaded handle.
func IsNotLoaded(err error) bool {
	_, ok := err.(notLoadedError)
	return ok
}

// loadFailedError indicates the instantiator could not produce a handle.
// State is left unchanged when this is returned.
type loadFailedError struct {
	id    string
	cause error
}

func (e loadFailedError) Error() string { return "failed to load model " + e.id + ": " + e.cause.Error() }

func (e loadFailedError) Unwrap() error { return e.cause }

// ErrLoadFailed constructs a loadFailedError.
func ErrLoadFailed(id string, cause error) error { return loadFailedError{id: id, cause: cause} }

// IsLoadFailed reports whether err indicates a failed instantiation.
func IsLoadFailed(err error) bool {
	_, ok := err.(loadFailedError)
	return ok
}

// invalidConfigError indicates a caller-correctable mistake in a request
// (missing model_id, unknown model type). Mapped to 400.
type invalidConfigError struct{ msg string }

func (e invalidConfigError) Error() string { return "invalid model config: " + e.msg }

// ErrInvalidConfig constructs an invalidConfigError.
func ErrInvalidConfig(msg string) error { return invalidConfigError{msg: msg} }

// IsInvalidConfig reports whether err is an invalid-config error from the
// manager or the download tracker.
func IsInvalidConfig(err error) bool {
	if _, ok := err.(invalidConfigError); ok {
		return true
	}
	return download.IsInvalidConfig(err)
}
