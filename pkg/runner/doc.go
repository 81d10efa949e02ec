/*
Package runner executes scenario documents against a settle.Manager and
reports what happened through pluggable handlers.

Every step of a scenario is applied as one outermost update. Subscribers are
registered as listeners that report the watched paths that changed and apply
their reactions as nested updates, so a run exercises the full notification
cycle, restarts included.

# Key Components

  - Runner: builds the manager, registers subscribers and drives the steps.
  - Handler: receives the run report (start, notifications, steps, summary).
  - TextHandler: human-readable, colored when writing to a terminal.
  - JSONHandler: one JSON object per line, for tooling.

# Usage

	doc, err := scenario.Load("cart.yaml")
	if err != nil {
		log.Fatal(err)
	}

	summary, err := runner.Run(doc, runner.NewTextHandler(os.Stdout))
	if err != nil {
		log.Fatal(err)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
*/
package runner
