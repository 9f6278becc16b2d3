package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Library and analysis errors
	ErrAnalysis     = fmt.Errorf("analysis failed")
	ErrNotAnalyzed  = fmt.Errorf("song has not been analyzed")
	ErrSongNotFound = fmt.Errorf("song not found")
	ErrStorage      = fmt.Errorf("cache unreachable")

	// Queue errors
	ErrNoAnchor       = fmt.Errorf("no song is currently playing; play something first")
	ErrRemoteMutation = fmt.Errorf("queue mutation failed")
	ErrNoTrackIndex   = fmt.Errorf("container entry has no track number")

	// Concurrency errors
	ErrLocked = fmt.Errorf("another euphony operation is running")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
