package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"neve/internal/hir"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

// session accumulates the source text of every `let` statement the user
// has successfully entered so far. There is no incremental-compilation
// path through the parser and HIR resolver, so each new line is tried by
// re-running the whole pipeline over session+line: cheap at REPL scale,
// and it reuses loadSource exactly as every other command does.
type session struct {
	lines []string
}

func (s *session) source() string {
	return strings.Join(s.lines, "\n")
}

func runRepl(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(os.Stdout, "neve repl — :help for meta-commands, :quit to exit")
	sess := &session{}
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Fprint(os.Stdout, "neve> ")
		line, ok := readLogicalLine(in)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if handled, quit := handleMeta(cmd, sess, line); quit {
				return nil
			} else if handled {
				continue
			}
		}

		evalReplLine(cmd, sess, line)
	}
}

// readLogicalLine reads one input line, following a trailing backslash
// onto the next physical line until one doesn't end in `\`.
func readLogicalLine(in *bufio.Scanner) (string, bool) {
	var b strings.Builder
	for {
		if !in.Scan() {
			if b.Len() == 0 {
				return "", false
			}
			return b.String(), true
		}
		text := in.Text()
		if strings.HasSuffix(text, "\\") {
			b.WriteString(strings.TrimSuffix(text, "\\"))
			b.WriteByte('\n')
			fmt.Fprint(os.Stdout, "    ")
			continue
		}
		b.WriteString(text)
		return b.String(), true
	}
}

func handleMeta(cmd *cobra.Command, sess *session, line string) (handled, quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true, true
	case ":help", ":h":
		fmt.Fprintln(os.Stdout, "  :help          show this message")
		fmt.Fprintln(os.Stdout, "  :env           list bindings defined so far")
		fmt.Fprintln(os.Stdout, "  :load FILE     evaluate FILE's top-level lets into the session")
		fmt.Fprintln(os.Stdout, "  :clear         discard the session and start over")
		fmt.Fprintln(os.Stdout, "  :quit          exit")
		fmt.Fprintln(os.Stdout, "  a trailing \\   continues the current line")
		return true, false
	case ":clear":
		sess.lines = nil
		fmt.Fprintln(os.Stdout, "session cleared")
		return true, false
	case ":env":
		printSessionEnv(cmd, sess)
		return true, false
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(os.Stderr, "usage: :load FILE")
			return true, false
		}
		content, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true, false
		}
		evalReplLine(cmd, sess, string(content))
		return true, false
	default:
		fmt.Fprintf(os.Stderr, "unknown meta-command %q (:help for the list)\n", fields[0])
		return true, false
	}
}

func printSessionEnv(cmd *cobra.Command, sess *session) {
	if len(sess.lines) == 0 {
		fmt.Fprintln(os.Stdout, "(empty)")
		return
	}
	l, bag, err := loadSource(cmd, "", "<repl>", sess.source())
	if err != nil {
		printDiagnostics(cmd, l.fs, bag)
		return
	}
	for _, defID := range l.mod.Defs {
		def := l.prog.Def(defID)
		if def.Kind == hir.DefLet {
			fmt.Fprintf(os.Stdout, "%s\n", l.in.MustLookup(def.Name))
		}
	}
}

// evalReplLine tries candidate against the current session plus
// candidate appended; on success the line joins the session permanently
// and its value is printed, matching `eval`/`run`'s output convention.
func evalReplLine(cmd *cobra.Command, sess *session, candidate string) {
	trial := strings.Join(append(append([]string{}, sess.lines...), candidate), "\n")
	l, bag, err := loadSource(cmd, "", "<repl>", trial)
	if err != nil {
		printDiagnostics(cmd, l.fs, bag)
		return
	}

	defID, ok := l.lastLetDef()
	if !ok {
		sess.lines = append(sess.lines, candidate)
		return
	}

	v, err := l.ev.Global(defID).Force()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	sess.lines = append(sess.lines, candidate)
	fmt.Fprintln(os.Stdout, v.Render(l.in))
}
