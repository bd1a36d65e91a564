package token

import "neve/internal/source"

// TriviaKind classifies non-significant lexemes attached to the following
// token's Leading slice.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment  // -- ... -- (or -- ... to end of line)
	TriviaBlockComment // --[ ... ]-- style, may nest
)

func (k TriviaKind) String() string {
	if s, ok := triviaKindNames[k]; ok {
		return s
	}
	return "TriviaKind(?)"
}

var triviaKindNames = map[TriviaKind]string{
	TriviaSpace:        "Space",
	TriviaNewline:      "Newline",
	TriviaLineComment:  "LineComment",
	TriviaBlockComment: "BlockComment",
}

// Trivia is whitespace or a comment preceding a significant token.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
