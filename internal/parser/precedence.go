package parser

import (
	"neve/internal/ast"
	"neve/internal/token"
)

// Binding power levels, low to high, per the language's operator table.
// A handful of operators (^, ++, ??, //) are right-associative; the rest
// of the binary operators are left-associative.
const (
	precLowest     = 0
	precFloorDiv   = 1 // //  (right)
	precPipe       = 2 // |>
	precCoalesce   = 3 // ??  (right)
	precOr         = 4 // ||
	precAnd        = 5 // &&
	precCmp        = 6 // == != < <= > >=
	precConcat     = 7 // ++  (right)
	precAdd        = 8 // + -
	precMul        = 9 // * / %
	precPow        = 10 // ^  (right)
	precUnary      = 11
)

type binInfo struct {
	prec     int
	op       ast.BinaryOp
	rightAssoc bool
}

var binaryOps = map[token.Kind]binInfo{
	token.SlashSlash: {precFloorDiv, ast.OpFloorDiv, true},
	token.PipeGt:     {precPipe, 0, false}, // op unused; parseBinary builds ExprPipe instead
	token.QQ:         {precCoalesce, ast.OpCoalesce, true},
	token.OrOr:       {precOr, ast.OpOr, false},
	token.AndAnd:     {precAnd, ast.OpAnd, false},
	token.EqEq:       {precCmp, ast.OpEq, false},
	token.BangEq:     {precCmp, ast.OpNeq, false},
	token.Lt:         {precCmp, ast.OpLt, false},
	token.LtEq:       {precCmp, ast.OpLe, false},
	token.Gt:         {precCmp, ast.OpGt, false},
	token.GtEq:       {precCmp, ast.OpGe, false},
	token.PlusPlus:   {precConcat, ast.OpConcat, true},
	token.Plus:       {precAdd, ast.OpAdd, false},
	token.Minus:      {precAdd, ast.OpSub, false},
	token.Star:       {precMul, ast.OpMul, false},
	token.Slash:      {precMul, ast.OpDiv, false},
	token.Percent:    {precMul, ast.OpMod, false},
	token.Caret:      {precPow, ast.OpPow, true},
}
