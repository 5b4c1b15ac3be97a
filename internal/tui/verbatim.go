package tui

import (
	"github.com/charmbracelet/bubbles/runeutil"
)

// The textarea sanitizes what it is given: tabs become four spaces and other
// control characters are dropped. The form must keep the text exactly as it
// was entered, so editor changes are spliced into the raw query instead of
// copying the editor's value back.
//
// Invariant: sanitize(raw) == editor value before every splice.

// splice applies the editor change from before to after onto raw. typed holds
// the runes of the key press that caused the change, if any; when the editor
// inserted exactly their sanitized form they are kept as typed.
func splice(san runeutil.Sanitizer, raw []rune, before, after string, typed []rune) []rune {
	if before == after {
		return raw
	}
	b, a := []rune(before), []rune(after)

	// widths[i] is the number of editor runes raw[i] became.
	widths := make([]int, len(raw))
	for i, r := range raw {
		widths[i] = len(san.Sanitize([]rune{r}))
	}

	p := 0
	for p < len(b) && p < len(a) && b[p] == a[p] {
		p++
	}
	// Snap the prefix down to a whole raw rune.
	ri, pd := 0, 0
	for ri < len(raw) && pd+widths[ri] <= p {
		pd += widths[ri]
		ri++
	}

	s := 0
	for s < len(b)-pd && s < len(a)-pd && b[len(b)-1-s] == a[len(a)-1-s] {
		s++
	}
	rj, sd := len(raw), 0
	for rj > ri && sd+widths[rj-1] <= s {
		sd += widths[rj-1]
		rj--
	}

	middle := a[pd : len(a)-sd]
	if len(typed) > 0 {
		clean := san.Sanitize(append([]rune(nil), typed...))
		if string(clean) == string(middle) {
			middle = typed
		}
	}

	out := make([]rune, 0, ri+len(middle)+len(raw)-rj)
	out = append(out, raw[:ri]...)
	out = append(out, middle...)
	return append(out, raw[rj:]...)
}
