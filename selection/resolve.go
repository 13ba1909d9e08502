package selection

import (
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/transcript"
)

// SegmentLookup resolves a selected text to the rendered segments it
// intersects. It is the rendering-surface fallback (tier 3): the TUI knows
// which transcript rows the visual selection touched even when the text
// itself cannot be located. Kept behind an injected function so tiers 1-2
// stay pure and testable without a rendering surface.
type SegmentLookup func(selected string) []transcript.Segment

// ResolveRange maps a free-text selection back to a time range using three
// strategies in order:
//
//  1. exact substring match inside the concatenated segment text, linearly
//     interpolating position within the owning segments' time windows;
//  2. word-boundary matching on the first/last 1-2 words of the selection,
//     ranked by fuzzy match and edit distance;
//  3. the injected SegmentLookup, using the intersected segments' full bounds.
//
// All three failing yields nil: user text selection is inherently fuzzy
// input, so the caller should quietly skip sending a clip reference.
func ResolveRange(selected string, segments []transcript.Segment, lookup SegmentLookup) *TranscriptSelection {
	selected = normalize(selected)
	if selected == "" || len(segments) == 0 {
		return nil
	}

	if sel := resolveExact(selected, segments); sel != nil {
		return sel
	}
	if sel := resolveWordBoundary(selected, segments); sel != nil {
		return sel
	}
	if lookup != nil {
		if sel := resolveFromLookup(selected, lookup); sel != nil {
			return sel
		}
	}

	log.Debugf("selection: no strategy resolved a range for %q", selected)
	return nil
}

// normalize collapses all whitespace runs to single spaces and trims.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// span records where a segment's text lives inside the concatenated string.
type span struct {
	seg        transcript.Segment
	start, end int // [start, end) rune-less byte offsets into the joined text
}

// concatenate joins normalized segment texts with single spaces and records
// each segment's offsets.
func concatenate(segments []transcript.Segment) (string, []span) {
	var b strings.Builder
	spans := make([]span, 0, len(segments))

	for i, seg := range segments {
		text := normalize(seg.Text)
		if i > 0 {
			b.WriteString(" ")
		}
		start := b.Len()
		b.WriteString(text)
		spans = append(spans, span{seg: seg, start: start, end: b.Len()})
	}
	return b.String(), spans
}

// resolveExact is tier 1: locate the selection as a substring and interpolate
// offsets into time within the owning segments.
func resolveExact(selected string, segments []transcript.Segment) *TranscriptSelection {
	full, spans := concatenate(segments)

	idx := strings.Index(strings.ToLower(full), strings.ToLower(selected))
	if idx < 0 {
		return nil
	}

	start, ok := offsetToTime(idx, spans, false)
	if !ok {
		return nil
	}
	end, ok := offsetToTime(idx+len(selected), spans, true)
	if !ok {
		return nil
	}

	return &TranscriptSelection{Text: selected, StartTime: start, EndTime: end}
}

// offsetToTime interpolates a byte offset in the concatenated text to a
// playback time inside the owning segment's [start, end) window. Exclusive
// offsets (selection ends) bind to the preceding segment at boundaries.
func offsetToTime(offset int, spans []span, exclusive bool) (float64, bool) {
	for _, sp := range spans {
		inside := offset >= sp.start && offset < sp.end
		if exclusive {
			inside = offset > sp.start && offset <= sp.end
		}
		if !inside {
			continue
		}
		width := sp.end - sp.start
		if width == 0 {
			return sp.seg.Start, true
		}
		fraction := float64(offset-sp.start) / float64(width)
		return sp.seg.Start + fraction*sp.seg.Duration(), true
	}
	return 0, false
}

// resolveWordBoundary is tier 2: when the exact substring crosses a segment
// boundary awkwardly, anchor on the first and last 1-2 words instead.
func resolveWordBoundary(selected string, segments []transcript.Segment) *TranscriptSelection {
	words := strings.Fields(selected)
	if len(words) == 0 {
		return nil
	}

	heads := anchors(words, true)
	tails := anchors(words, false)

	startIdx := -1
	for _, head := range heads {
		if i := bestSegmentMatch(head, segments); i >= 0 {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil
	}

	endIdx := -1
	for _, tail := range tails {
		if i := bestSegmentMatch(tail, segments); i >= 0 {
			endIdx = i
			break
		}
	}
	if endIdx < 0 || endIdx < startIdx {
		return nil
	}

	return &TranscriptSelection{
		Text:      selected,
		StartTime: segments[startIdx].Start,
		EndTime:   segments[endIdx].End,
	}
}

// anchors returns the 2-word then 1-word anchor from either end of the
// selection.
func anchors(words []string, fromStart bool) []string {
	if len(words) == 1 {
		return []string{words[0]}
	}
	if fromStart {
		return []string{strings.Join(words[:2], " "), words[0]}
	}
	return []string{strings.Join(words[len(words)-2:], " "), words[len(words)-1]}
}

// bestSegmentMatch returns the index of the segment best matching the anchor,
// or -1. Fuzzy matching filters candidates; edit distance picks the winner
// among them.
func bestSegmentMatch(anchor string, segments []transcript.Segment) int {
	best := -1
	bestDistance := -1

	for i, seg := range segments {
		text := normalize(seg.Text)
		if !fuzzy.MatchNormalizedFold(anchor, text) {
			continue
		}
		d := levenshtein.Distance(strings.ToLower(anchor), strings.ToLower(text))
		if best < 0 || d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	return best
}

// resolveFromLookup is tier 3: trust the rendering surface's notion of which
// segments the selection intersected and use their full bounds.
func resolveFromLookup(selected string, lookup SegmentLookup) *TranscriptSelection {
	segs := lookup(selected)
	if len(segs) == 0 {
		return nil
	}

	start := segs[0].Start
	end := segs[0].End
	for _, seg := range segs[1:] {
		if seg.Start < start {
			start = seg.Start
		}
		if seg.End > end {
			end = seg.End
		}
	}
	return &TranscriptSelection{Text: selected, StartTime: start, EndTime: end}
}
