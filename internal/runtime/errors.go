package runtime

// unavailableError means the binary was built without the 'llama' tag.
type unavailableError struct{}

func (unavailableError) Error() string {
	return "llama runtime not built in (rebuild with -tags llama)"
}

// IsUnavailable reports whether err means inference is impossible in this
// build rather than a transient failure.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
