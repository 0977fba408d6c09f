package statuses

// Канонические статусы партии. Переходы только вперёд:
// waiting -> in_progress -> finished.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)
