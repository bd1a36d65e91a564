package ast

import "neve/internal/source"

// ExprKind enumerates expression node variants.
type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprIntLit
	ExprFloatLit
	ExprBoolLit
	ExprCharLit
	ExprStringLit
	ExprMultilineStr
	ExprInterpString
	ExprPathLit
	ExprList
	ExprListComp
	ExprTuple
	ExprRecord
	ExprLambda
	ExprCall
	ExprField
	ExprSafeField
	ExprIndex
	ExprMatch
	ExprIf
	ExprBlock
	ExprBinary
	ExprUnary
	ExprPipe
	ExprTry
	ExprRange
	ExprErroneous
)

func (k ExprKind) String() string {
	names := [...]string{
		"Ident", "IntLit", "FloatLit", "BoolLit", "CharLit", "StringLit",
		"MultilineStr", "InterpString", "PathLit", "List", "ListComp", "Tuple",
		"Record", "Lambda", "Call", "Field", "SafeField", "Index", "Match",
		"If", "Block", "Binary", "Unary", "Pipe", "Try", "Range", "Erroneous",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// BinaryOp enumerates infix operators. The order follows String()'s name
// table, not operator precedence (see parser/precedence.go).
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat // ++
	OpFloorDiv
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpCoalesce // ??
)

func (op BinaryOp) String() string {
	names := [...]string{
		"+", "-", "*", "/", "%", "^", "++", "//", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "??",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp enumerates prefix operators.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "!"
	}
	return "-"
}

// Qualifier names the leading module-path segment of an identifier
// reference: bare, self, super, or crate.
type Qualifier uint8

const (
	QualNone Qualifier = iota
	QualSelf
	QualSuper
	QualCrate
)

// RecordFieldInit is one `name = value` (or `name` shorthand) entry in a
// record literal.
type RecordFieldInit struct {
	Name  source.Symbol
	Value ExprID
	Span  source.Span
}

// CompGenerator is one `pattern <- source` clause of a list comprehension.
type CompGenerator struct {
	Pattern PatternID
	Source  ExprID
}

// MatchArm is one `pattern [if guard] -> body` arm of a match expression.
type MatchArm struct {
	Pattern PatternID
	Guard   ExprID // NoExprID if absent
	Body    ExprID
	Span    source.Span
}

// Param is one lambda/function parameter.
type Param struct {
	Name source.Symbol
	Type TypeID // NoTypeID if unannotated
	Lazy bool
	Span source.Span
}

// BlockBinding is one `let pattern[: type] = value;` statement inside a block.
type BlockBinding struct {
	Pattern PatternID
	Type    TypeID
	Value   ExprID
	Span    source.Span
}

// InterpSegment is one chunk of an interpolated string: either a literal run
// of text, or a nested expression between `{` and `}`.
type InterpSegment struct {
	Literal bool
	Text    source.Symbol // valid when Literal
	Expr    ExprID        // valid when !Literal
}

// Expr is a single AST expression node. Only the fields relevant to Kind are
// populated; the rest stay zero.
type Expr struct {
	Kind ExprKind
	Span source.Span

	// Ident
	Name      source.Symbol
	Qualifier Qualifier

	// Int/Float/String/Char/Path literals
	Text     source.Symbol
	IntBase  int
	BoolVal  bool
	CharVal  rune
	Segments []InterpSegment

	// List, Tuple, Call args
	Elems []ExprID

	// ListComp
	Generators []CompGenerator
	Guards     []ExprID

	// Record
	Fields []RecordFieldInit
	Spread ExprID // base record for `#{ ..base, field = v }`, or NoExprID

	// Lambda
	Params []Param
	Body   ExprID

	// Call / Field / SafeField / Index / Try / Unary
	Callee   ExprID
	Receiver ExprID
	FieldN   source.Symbol
	Index    ExprID
	Operand  ExprID

	// Binary / Unary / Pipe / Range
	BinOp   BinaryOp
	UnOp    UnaryOp
	Left    ExprID
	Right   ExprID
	RangeIncl bool

	// Match
	Scrutinee ExprID
	Arms      []MatchArm

	// If
	Cond ExprID
	Then ExprID
	Else ExprID

	// Block
	Bindings []BlockBinding
	Result   ExprID
}

// Exprs owns the arena of all expression nodes in a module.
type Exprs struct {
	Arena *Arena[Expr]
}

func NewExprs(capHint uint) *Exprs {
	return &Exprs{Arena: NewArena[Expr](capHint)}
}

func (e *Exprs) New(expr Expr) ExprID {
	return ExprID(e.Arena.Allocate(expr))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}
