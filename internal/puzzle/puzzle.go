// Package puzzle asks a text model for a secret word with three clues and
// turns the reply into a Puzzle.
package puzzle

// ClueCount is the number of clues every puzzle carries.
const ClueCount = 3

// Prompt is sent verbatim on every generation call.
const Prompt = `Generate a single simple word,
along with 3 progressively revealing clues.
Format the response strictly as:
Word: [WORD]
Clue 1: [FIRST CLUE]
Clue 2: [SECOND CLUE]
Clue 3: [THIRD CLUE]`

type Puzzle struct {
	Word  string   `json:"word"`
	Clues []string `json:"clues"`
}
