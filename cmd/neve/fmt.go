package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"neve/internal/diag"
	"neve/internal/lexer"
	"neve/internal/source"
	"neve/internal/token"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Reformat Neve source files",
}

var fmtFileCmd = &cobra.Command{
	Use:   "file FILE",
	Short: "Reformat FILE in place",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmtFile,
}

var fmtDirCmd = &cobra.Command{
	Use:   "dir DIR",
	Short: "Reformat every .neve file under DIR",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmtDir,
}

var fmtCheckCmd = &cobra.Command{
	Use:   "check [PATH...]",
	Short: "Report files that are not already formatted, without rewriting them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmtCheck,
}

func init() {
	fmtCmd.AddCommand(fmtFileCmd)
	fmtCmd.AddCommand(fmtDirCmd)
	fmtCmd.AddCommand(fmtCheckCmd)
}

func runFmtFile(cmd *cobra.Command, args []string) error {
	return fmtRewrite(args[0])
}

func runFmtDir(cmd *cobra.Command, args []string) error {
	root := args[0]
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".neve" {
			return nil
		}
		return fmtRewrite(path)
	})
}

func runFmtCheck(cmd *cobra.Command, args []string) error {
	unformatted := []string{}
	for _, path := range args {
		ok, err := fmtIsFormatted(path)
		if err != nil {
			return userError(err)
		}
		if !ok {
			unformatted = append(unformatted, path)
		}
	}
	for _, path := range unformatted {
		fmt.Fprintln(os.Stdout, path)
	}
	if len(unformatted) > 0 {
		return userError(fmt.Errorf("%d file(s) need formatting", len(unformatted)))
	}
	return nil
}

func fmtRewrite(path string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return userError(err)
	}
	formatted, err := formatSource(path, original)
	if err != nil {
		return userError(err)
	}
	if bytes.Equal(original, formatted) {
		return nil
	}
	return os.WriteFile(path, formatted, 0o644)
}

func fmtIsFormatted(path string) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	formatted, err := formatSource(path, original)
	if err != nil {
		return false, err
	}
	return bytes.Equal(original, formatted), nil
}

// formatSource re-lexes content and re-emits its tokens with normalized
// spacing and indentation. It works off the raw token stream rather than
// a parsed AST: a shallow, trivia-preserving shell, not a pretty-printer
// for the language's full grammar.
func formatSource(path string, content []byte) ([]byte, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, content)
	bag := diag.NewBag(1)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})

	var out bytes.Buffer
	indent := 0
	atLineStart := true
	blankRun := 0
	prevKind := token.Invalid

	writeIndent := func() {
		out.WriteString(strings.Repeat("    ", indent))
	}

	for {
		tok := lx.Next()

		for _, tr := range tok.Leading {
			if tr.Kind == token.TriviaNewline {
				blankRun++
			}
			if tr.Kind == token.TriviaLineComment || tr.Kind == token.TriviaBlockComment {
				if atLineStart {
					writeIndent()
				} else if needsSpaceBefore(prevKind, token.Invalid) {
					out.WriteByte(' ')
				}
				out.WriteString(strings.TrimRight(tr.Text, " \t"))
				out.WriteByte('\n')
				atLineStart = true
				blankRun = 0
				prevKind = token.Invalid
			}
		}
		if tok.Kind == token.EOF {
			break
		}

		if blankRun > 1 && out.Len() > 0 {
			out.WriteByte('\n')
		}
		blankRun = 0

		if tok.Kind == token.RBrace || tok.Kind == token.RBracket || tok.Kind == token.RParen {
			indent = max0(indent - 1)
		}

		if atLineStart {
			writeIndent()
		} else if needsSpaceBefore(prevKind, tok.Kind) {
			out.WriteByte(' ')
		}
		out.WriteString(tok.Text)
		atLineStart = false
		prevKind = tok.Kind

		if tok.Kind == token.LBrace || tok.Kind == token.LBracket || tok.Kind == token.LParen {
			indent++
		}
		if tok.Kind == token.Semicolon {
			out.WriteByte('\n')
			atLineStart = true
		}
	}

	result := out.String()
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return []byte(result), nil
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// needsSpaceBefore decides whether cur needs a leading space after prev,
// given both were emitted on the same line. Open/close brackets and a
// handful of tight punctuators bind without surrounding space.
func needsSpaceBefore(prev, cur token.Kind) bool {
	switch cur {
	case token.Comma, token.Semicolon, token.RParen, token.RBracket, token.Dot, token.DotDot:
		return false
	}
	switch prev {
	case token.LParen, token.LBracket, token.Dot, token.DotDot, token.Invalid:
		return false
	}
	return true
}
