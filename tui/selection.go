// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"strings"

	"github.com/unpuzzle-app/unpuzzle/transcript"
	"github.com/unpuzzle-app/unpuzzle/util"
)

// selectionSlice returns the transcript segments between the anchor and the
// cursor, inclusive, with their joined text. Indices are clamped to the
// segment list bounds.
func selectionSlice(segments []transcript.Segment, anchor, cursor int) ([]transcript.Segment, string) {
	if len(segments) == 0 {
		return nil, ""
	}

	clamp := func(i int) int {
		return util.Max(0, util.Min(i, len(segments)-1))
	}

	lo, hi := clamp(anchor), clamp(cursor)
	if lo > hi {
		lo, hi = hi, lo
	}

	selected := segments[lo : hi+1]
	texts := make([]string, len(selected))
	for i, seg := range selected {
		texts[i] = seg.Text
	}
	return selected, strings.Join(texts, " ")
}

// startTranscriptSelection enters transcript selection mode anchored at the
// segment under the playhead. A session without a transcript stays out of
// selection mode.
func (b *statefulBubble) startTranscriptSelection() bool {
	if b.session == nil || b.session.Transcript == nil || len(b.session.Transcript.Segments) == 0 {
		return false
	}

	anchor := b.session.Transcript.IndexAt(b.playbackState.CurrentTime)
	if anchor < 0 {
		anchor = 0
	}

	b.selecting = true
	b.selectionAnchor = anchor
	b.selectionCursor = anchor
	b.offerTranscriptSelection()
	return true
}

// moveTranscriptSelection extends the selection by moving the cursor end.
func (b *statefulBubble) moveTranscriptSelection(delta int) {
	if !b.selecting || b.session == nil || b.session.Transcript == nil {
		return
	}

	segments := b.session.Transcript.Segments
	cursor := b.selectionCursor + delta
	b.selectionCursor = util.Max(0, util.Min(cursor, len(segments)-1))
	b.offerTranscriptSelection()
}

// offerTranscriptSelection hands the selected rows to the session for
// throttled range resolution.
func (b *statefulBubble) offerTranscriptSelection() {
	segs, text := selectionSlice(b.session.Transcript.Segments, b.selectionAnchor, b.selectionCursor)
	if len(segs) == 0 {
		return
	}
	b.session.OfferSelection(text, segs)
}

// cancelTranscriptSelection leaves selection mode and clears the pending
// segment.
func (b *statefulBubble) cancelTranscriptSelection() {
	b.selecting = false
	if b.session != nil {
		b.session.Agent.ClearSegment()
	}
}
