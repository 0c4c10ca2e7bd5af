package assess

// startedMsg reports the outcome of submitting the details form.
type startedMsg struct {
	snap    snapshot
	resumed bool
	err     error
}

// enteredMsg is sent once the session has moved onto the question pages.
type enteredMsg struct {
	snap snapshot
	err  error
}

// movedMsg is sent after Next or Previous. done is set when the last
// question completed the assessment.
type movedMsg struct {
	snap snapshot
	done bool
	err  error
}

// snapshotMsg refreshes a screen that becomes active again after a pop.
type snapshotMsg struct {
	snap snapshot
}

// exportedMsg carries the report paths written by the export key.
type exportedMsg struct {
	paths []string
	err   error
}
