package session

// busyError signals that Start was rejected because a run is already active.
type busyError struct{}

func (busyError) Error() string { return "generation already running" }

// IsBusy reports whether err means a Start was rejected by the single-run guard.
func IsBusy(err error) bool {
	_, ok := err.(busyError)
	return ok
}

// emptyPromptError signals a request with no prompt text.
type emptyPromptError struct{}

func (emptyPromptError) Error() string { return "prompt is empty" }

// IsEmptyPrompt reports whether err indicates a blank prompt.
func IsEmptyPrompt(err error) bool {
	_, ok := err.(emptyPromptError)
	return ok
}
