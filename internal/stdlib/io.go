package stdlib

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"neve/internal/eval"
)

// registerIO wires print, println, read_line, read_file, write_file.
// Every one of these is an elimination site in its own right — there is
// no value left to stay lazy once a builtin is about to touch the
// outside world — so each forces its arguments eagerly via forceArgs
// rather than leaning on Apply's own strict-parameter forcing.
func registerIO(b *eval.Builtins) {
	b.Register("io.print", 1, builtinPrint)
	b.Register("io.println", 1, builtinPrintln)
	b.Register("io.read_line", 0, builtinReadLine)
	b.Register("io.read_file", 1, builtinReadFile)
	b.Register("io.write_file", 2, builtinWriteFile)
}

// stdinReader is shared across every io.read_line call so repeated
// calls keep consuming the same buffered stream instead of each
// wrapping a fresh bufio.Reader around os.Stdin and losing whatever the
// previous call had already buffered past the line it returned.
var (
	stdinOnce   sync.Once
	stdinReader *bufio.Reader
)

func stdin() *bufio.Reader {
	stdinOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	return stdinReader
}

func builtinPrint(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	fmt.Print(s)
	return eval.Unit, nil
}

func builtinPrintln(_ *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	s, err := wantString(vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	fmt.Println(s)
	return eval.Unit, nil
}

func builtinReadLine(_ *eval.Evaluator, _ []*eval.Thunk) (eval.Value, error) {
	line, err := stdin().ReadString('\n')
	if err != nil && line == "" {
		return eval.Value{}, err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return eval.String(line), nil
}

func builtinReadFile(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	path, err := pathOrString(ev, vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return eval.Value{}, fmt.Errorf("stdlib: io.read_file: %w", err)
	}
	return eval.String(string(data)), nil
}

func builtinWriteFile(ev *eval.Evaluator, args []*eval.Thunk) (eval.Value, error) {
	vs, err := forceArgs(args)
	if err != nil {
		return eval.Value{}, err
	}
	path, err := pathOrString(ev, vs[0])
	if err != nil {
		return eval.Value{}, err
	}
	contents, err := wantString(vs[1])
	if err != nil {
		return eval.Value{}, err
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return eval.Value{}, fmt.Errorf("stdlib: io.write_file: %w", err)
	}
	return eval.Unit, nil
}

// pathOrString accepts a Path, a String, or a Derivation value — programs
// tend to build file paths via string concatenation rather than Neve's
// distinct Path literal syntax, and a derivation is exactly what a build
// output path looks like before it has been built, so read_file/write_file
// realize one through ev the same way string interpolation does.
func pathOrString(ev *eval.Evaluator, v eval.Value) (string, error) {
	if v.Kind == eval.KindDerivation {
		return ev.RealizeToString(v)
	}
	if v.Kind != eval.KindString && v.Kind != eval.KindPath {
		return "", fmt.Errorf("stdlib: expected a string or path value")
	}
	return v.Str, nil
}
