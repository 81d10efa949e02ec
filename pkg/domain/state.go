package domain

// ChangedFunc answers whether anything at or below path changed.
// Called with no arguments it reports whether anything changed at all.
type ChangedFunc func(path ...string) bool

// AfterUpdate is handed to the after-update hook once the outermost update
// has settled and every listener pass has completed.
type AfterUpdate struct {
	// State is the read-only view of the settled state (an *observe.Object).
	State any

	// ExceptionOccurred is true when at least one listener failed.
	ExceptionOccurred bool

	// RetrieveExceptions hands the collected listener errors to the caller.
	// Once called, the errors are no longer reported to the fault handler.
	RetrieveExceptions func() []error
}
