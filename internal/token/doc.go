// Package token defines lexical token kinds and trivia for Neve source.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly.
//   - There are exactly 17 reserved keywords (see keywords.go); "true" and
//     "false" lex directly to BoolLit and are not counted among them.
//   - Comments and whitespace never appear in the main token stream; they
//     are collected as leading Trivia on the following significant token.
package token
