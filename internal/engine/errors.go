package engine

// registrationError signals a rejected RegisterModel call (duplicate id or
// invalid config). It never reaches a Future since none exists yet.
type registrationError struct {
	id     string
	reason string
}

func (e registrationError) Error() string { return "registration rejected: " + e.id + ": " + e.reason }

// IsRegistrationRejected reports whether err came from a rejected RegisterModel.
func IsRegistrationRejected(err error) bool {
	_, ok := err.(registrationError)
	return ok
}

// unknownModelError is returned synchronously when a caller targets an
// unregistered model id.
type unknownModelError struct{ id string }

func (e unknownModelError) Error() string { return "unknown model: " + e.id }

// ErrUnknownModel constructs an unknownModelError.
func ErrUnknownModel(id string) error { return unknownModelError{id: id} }

// IsUnknownModel reports whether err indicates a missing model id.
func IsUnknownModel(err error) bool {
	_, ok := err.(unknownModelError)
	return ok
}

// stageError captures a failure raised inside prepare/infer/interpret. It is
// delivered by resolving the task's Future in the failed state; it never
// crashes a worker.
type stageError struct {
	stage   string
	modelID string
	err     error
}

func (e stageError) Error() string {
	return e.stage + " stage failed for model " + e.modelID + ": " + e.err.Error()
}

func (e stageError) Unwrap() error { return e.err }

// IsStageFailure reports whether err originated in a pipeline stage.
func IsStageFailure(err error) bool {
	_, ok := err.(stageError)
	return ok
}

// badKindError rejects an execute call with an unrecognized output kind
// before any task exists.
type badKindError struct{ kind string }

func (e badKindError) Error() string { return "unsupported output kind: " + e.kind }

// IsBadOutputKind reports whether err indicates an unrecognized output kind.
func IsBadOutputKind(err error) bool {
	_, ok := err.(badKindError)
	return ok
}

// cancelledError resolves a Future whose task was cancelled before inference.
type cancelledError struct{ taskID string }

func (e cancelledError) Error() string { return "task cancelled: " + e.taskID }

// IsCancelled reports whether err indicates a caller-initiated cancellation.
func IsCancelled(err error) bool {
	_, ok := err.(cancelledError)
	return ok
}

// waitTimeoutError is raised only to a blocked GetTimeout caller; the task
// itself keeps running and may still complete and populate the cache.
type waitTimeoutError struct{}

func (waitTimeoutError) Error() string { return "timed out waiting for result" }

// IsWaitTimeout reports whether err is a caller-side wait timeout.
func IsWaitTimeout(err error) bool {
	_, ok := err.(waitTimeoutError)
	return ok
}

// closedError resolves tasks stranded by Unregister or Close rather than
// dropping them silently.
type closedError struct{ what string }

func (e closedError) Error() string { return e.what + " closed" }

// IsClosed reports whether err indicates the engine or model was shut down
// while the task was in flight.
func IsClosed(err error) bool {
	_, ok := err.(closedError)
	return ok
}
