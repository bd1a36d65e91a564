// Package ast defines Neve's abstract syntax tree: algebraic node variants
// for expressions, patterns, syntactic types, and top-level definitions.
//
// Nodes are allocated into per-kind arenas (Exprs, Patterns, Types, Items)
// and referenced by 1-based IDs (ExprID, PatternID, TypeID, ItemID); 0 means
// "absent" (NoExprID etc.). The AST is immutable once built by the parser:
// later stages (internal/hir, internal/sema, internal/eval) read it but
// never mutate it in place.
package ast
