package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ListRemote Phase = iota
	PlanDiff
	AnalyzeSongs
	PruneSongs
	SyncDone
)

func (p Phase) String() string {
	switch p {
	case ListRemote:
		return "list_remote"
	case PlanDiff:
		return "plan_diff"
	case AnalyzeSongs:
		return "analyze_songs"
	case PruneSongs:
		return "prune_songs"
	case SyncDone:
		return "sync_done"
	default:
		return ""
	}
}

func listRemoteUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListRemote,
		Step:    1,
		Total:   1,
		Message: "Fetching library paths from MPD...",
	}
}

func planUpdate(toAnalyze, toRemove int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanDiff,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d song(s) to analyze, %d to remove", toAnalyze, toRemove),
	}
}

func analyzeUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AnalyzeSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Analyzing %s", path),
	}
}

func pruneUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PruneSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Removing %s", path),
	}
}

func doneUpdate(analyzed, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Analyzed %d song(s) successfully. %d failure(s).", analyzed, failed),
	}
}
