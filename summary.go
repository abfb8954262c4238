package siteprov

import (
	"errors"
	"fmt"

	"github.com/stuartcarnie/siteprov/console"
)

// Status is the outcome of a single step.
type Status int

const (
	NotRun Status = iota
	Succeeded
	Failed
	Blocked
	Skipped
)

func (s Status) String() string {
	switch s {
	case NotRun:
		return "not run"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Blocked:
		return "blocked"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// satisfied reports whether dependents of a step with this status may run.
func (s Status) satisfied() bool {
	return s == Succeeded || s == Skipped
}

// StepError wraps the error that made a step fail.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Outcome records what happened to a step.
type Outcome struct {
	Step   *Step
	Status Status
	// Reason explains a skipped or blocked step.
	Reason string
	// Err is set for failed steps.
	Err error
}

// Summary holds the outcome of every step of a run, in execution order.
type Summary struct {
	Outcomes []Outcome
}

// Outcome returns the outcome of the named step.
func (s *Summary) Outcome(name string) (Outcome, bool) {
	for _, o := range s.Outcomes {
		if o.Step.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Status returns the status of the named step, NotRun if it is unknown.
func (s *Summary) Status(name string) Status {
	o, _ := s.Outcome(name)
	return o.Status
}

// Failed reports whether any step failed or was blocked.
func (s *Summary) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Status == Failed || o.Status == Blocked {
			return true
		}
	}
	return false
}

// Err returns the failures of the run as *StepError values joined
// together, or nil when no step failed.
func (s *Summary) Err() error {
	var errs []error
	for _, o := range s.Outcomes {
		if o.Status == Failed {
			errs = append(errs, &StepError{Step: o.Step.Name, Err: o.Err})
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of steps with status st.
func (s *Summary) Count(st Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// Report writes one line per step to c.
func (s *Summary) Report(c console.Console) {
	c.Header("Summary")
	for _, o := range s.Outcomes {
		line := fmt.Sprintf("%-12s %s", o.Step.Name, o.Status)
		switch {
		case o.Err != nil:
			line += ": " + o.Err.Error()
		case o.Reason != "":
			line += ": " + o.Reason
		}
		switch o.Status {
		case Succeeded:
			c.Success(line)
		case Failed, Blocked:
			c.Error(line)
		default:
			c.Warn(line)
		}
	}
}
