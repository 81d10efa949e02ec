package runner

// Handler receives the report of a run, in order: Start, then for every step
// its Notifications followed by StepDone, and finally Finish.
//
// Notification is called from inside a listener. An error returned by it
// counts as a failure of that listener. Errors from the other methods abort
// the run.
type Handler interface {
	Start(info RunInfo) error
	Notification(n Notification) error
	StepDone(res StepResult) error
	Finish(sum Summary) error
}

// Discard is a Handler that ignores the report.
var Discard Handler = discard{}

type discard struct{}

func (discard) Start(RunInfo) error { return nil }
func (discard) Notification(Notification) error { return nil }
func (discard) StepDone(StepResult) error { return nil }
func (discard) Finish(Summary) error { return nil }
