package domain

// VertexStatus is the lifecycle state of a task as shown to the user.
type VertexStatus string

const (
	// VertexStatusPending indicates the task waits for the tasks it requires.
	VertexStatusPending VertexStatus = "pending"
	// VertexStatusRunning indicates the task is being compiled.
	VertexStatusRunning VertexStatus = "running"
	// VertexStatusCompleted indicates the task was compiled successfully.
	VertexStatusCompleted VertexStatus = "completed"
	// VertexStatusFailed indicates the compilation of the task failed.
	VertexStatusFailed VertexStatus = "failed"
	// VertexStatusCached indicates every unit of the task was consistent.
	VertexStatusCached VertexStatus = "cached"
	// VertexStatusSkipped indicates the task never ran, e.g. because a required task failed.
	VertexStatusSkipped VertexStatus = "skipped"
)

// IsTerminal checks if a status is a terminal state (Completed, Failed, Cached, Skipped).
func (s VertexStatus) IsTerminal() bool {
	switch s {
	case VertexStatusCompleted, VertexStatusFailed, VertexStatusCached, VertexStatusSkipped:
		return true
	default:
		return false
	}
}
