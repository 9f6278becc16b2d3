// Package ui implements the interactive playlist session as a bubbletea
// program.
//
// The session is a small state machine: it ranks the remaining pool against
// the current anchor, presents the top candidates, and blocks for a single
// keypress. A digit queues that candidate at the end of the play queue and
// makes it the new anchor; q cancels. The session ends when the pool runs
// low or the user quits.
package ui
