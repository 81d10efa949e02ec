package runner

import "time"

// RunInfo opens a report.
type RunInfo struct {
	ID          string   `json:"run_id"`
	Scenario    string   `json:"scenario"`
	Subscribers []string `json:"subscribers"`
	Steps       int      `json:"steps"`
}

// Notification describes one listener invocation of a subscriber.
type Notification struct {
	Step       string   `json:"step"`
	Subscriber string   `json:"subscriber"`
	Pass       int      `json:"pass"`
	Changed    []string `json:"changed"`
	Reactions  int      `json:"reactions"`
}

// StepResult describes one applied step.
type StepResult struct {
	Index         int           `json:"index"`
	Name          string        `json:"name"`
	Error         string        `json:"error,omitempty"`
	Changes       []string      `json:"changes"`
	Passes        int           `json:"passes"`
	Notifications int           `json:"notifications"`
	Faults        []Fault       `json:"faults,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Failed reports whether the step update or one of its listeners failed.
func (s StepResult) Failed() bool {
	return s.Error != "" || len(s.Faults) > 0
}

// Fault is a listener failure, attributed to its subscriber.
type Fault struct {
	Subscriber string `json:"subscriber"`
	Error      string `json:"error"`
}

// Summary closes a report.
type Summary struct {
	ID            string        `json:"run_id"`
	Steps         int           `json:"steps"`
	Failed        int           `json:"failed"`
	Notifications int           `json:"notifications"`
	State         any           `json:"state"`
	Duration      time.Duration `json:"duration"`
}
