package puzzle

import (
	"fmt"
	"strings"
)

var labels = [ClueCount + 1]string{"Word:", "Clue 1:", "Clue 2:", "Clue 3:"}

// Parse extracts the word and clues from a model reply. Blank lines are
// ignored; the first four remaining lines must carry the labels in order.
func Parse(text string) (Puzzle, error) {
	lines := make([]string, 0, len(labels))
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == len(labels) {
			break
		}
	}
	if len(lines) < len(labels) {
		return Puzzle{}, &MalformedResponseError{
			Line:   -1,
			Reason: fmt.Sprintf("expected %d lines, got %d", len(labels), len(lines)),
		}
	}

	values := make([]string, len(labels))
	for i, l := range lines {
		v, ok := stripLabel(l, labels[i])
		if !ok {
			return Puzzle{}, &MalformedResponseError{Line: i, Reason: fmt.Sprintf("missing %q label", labels[i])}
		}
		if i == 0 {
			v = cleanWord(v)
		}
		if v == "" {
			return Puzzle{}, &MalformedResponseError{Line: i, Reason: "empty value"}
		}
		values[i] = v
	}
	return Puzzle{Word: values[0], Clues: values[1:]}, nil
}

// stripLabel removes label from the start of line, case-insensitively.
// Markdown emphasis around the label ("**Word:** OCEAN") or the whole line
// ("**Clue 1: Salty**") is tolerated; other asterisks belong to the value.
func stripLabel(line, label string) (string, bool) {
	body := strings.TrimLeft(line, "*_")
	mark := line[:len(line)-len(body)]
	body = strings.TrimSpace(body)
	if len(body) < len(label) || !strings.EqualFold(body[:len(label)], label) {
		return "", false
	}
	rest := body[len(label):]
	if mark != "" {
		if strings.HasPrefix(rest, mark) {
			rest = rest[len(mark):]
		} else {
			rest = strings.TrimSuffix(strings.TrimSpace(rest), mark)
		}
	}
	return strings.TrimSpace(rest), true
}

// cleanWord drops placeholder brackets and stray punctuation models leave
// around the answer, e.g. "[OCEAN]" or "Ocean.".
func cleanWord(w string) string {
	return strings.TrimSpace(strings.Trim(w, "[]\"'`.*_ "))
}
