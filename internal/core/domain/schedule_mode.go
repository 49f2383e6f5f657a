package domain

import "go.trai.ch/zerr"

// ScheduleMode selects which units a build schedule includes.
type ScheduleMode int

const (
	// RebuildInconsistent includes inconsistent units and every unit depending on one.
	RebuildInconsistent ScheduleMode = iota
	// RebuildAll includes every unit reachable from the roots.
	RebuildAll
	// RebuildInconsistentInterface behaves like RebuildInconsistent, but dependents whose
	// recorded dependency interfaces are unchanged are not rebuilt.
	RebuildInconsistentInterface
)

var scheduleModeNames = map[ScheduleMode]string{
	RebuildInconsistent:          "rebuild-inconsistent",
	RebuildAll:                   "rebuild-all",
	RebuildInconsistentInterface: "rebuild-inconsistent-interface",
}

func (m ScheduleMode) String() string {
	if name, ok := scheduleModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseScheduleMode parses the textual form of a ScheduleMode. The empty string selects
// RebuildInconsistent.
func ParseScheduleMode(s string) (ScheduleMode, error) {
	if s == "" {
		return RebuildInconsistent, nil
	}
	for mode, name := range scheduleModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown schedule mode"), "mode", s)
}

// TaskState is the lifecycle state of a build task.
type TaskState int

const (
	TaskOpen TaskState = iota
	TaskInProgress
	TaskSuccess
	TaskFailure
)

func (s TaskState) String() string {
	switch s {
	case TaskOpen:
		return "open"
	case TaskInProgress:
		return "in-progress"
	case TaskSuccess:
		return "success"
	case TaskFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the state is SUCCESS or FAILURE.
func (s TaskState) IsTerminal() bool {
	return s == TaskSuccess || s == TaskFailure
}
