package trellis

import (
	"fmt"
	"os"
)

// interactionStats accumulates per-drag metrics. Only populated while live
// visualization is enabled.
type interactionStats struct {
	dragFrames   int
	nodesMoved   int
	connsTouched int
}

func (e *Editor) statDragStart() {
	if !e.debug {
		return
	}
	e.stats = interactionStats{nodesMoved: len(e.selection)}
}

func (e *Editor) statDragMove() {
	if !e.debug {
		return
	}
	e.stats.dragFrames++
}

// statDragEnd logs the finished drag to stderr. Pending counts are read
// before the tracker flushes, so it is called from finishDrag ahead of
// EndDrag in live mode; with live updates on the pending sets are empty
// and the frame count tells the story instead.
func (e *Editor) statDragEnd() {
	if !e.debug {
		return
	}
	e.stats.connsTouched = e.tracker.PendingConnections()
	_, _ = fmt.Fprintf(os.Stderr,
		"[trellis] drag: %d frames | %d nodes | %d connections | index entries: %d\n",
		e.stats.dragFrames, e.stats.nodesMoved, e.stats.connsTouched, e.index.EntryCount())
	e.stats = interactionStats{}
}
