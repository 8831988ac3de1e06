package download

// invalidConfigError signals a caller-correctable mistake in a download
// request (missing required field). Raised synchronously, before any
// background work is spawned, so the HTTP layer can return 400.
type invalidConfigError struct{ msg string }

func (e invalidConfigError) Error() string { return "invalid model config: " + e.msg }

// ErrInvalidConfig constructs an invalidConfigError.
func ErrInvalidConfig(msg string) error { return invalidConfigError{msg: msg} }

// IsInvalidConfig reports whether err indicates an invalid model config.
func IsInvalidConfig(err error) bool {
	_, ok := err.(invalidConfigError)
	return ok
}
