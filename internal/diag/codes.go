package diag

import "fmt"

// Code identifies a diagnostic's category. Codes are grouped into bands by
// pipeline stage so Code.ID formats them with a stage prefix.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical (1000-1999)
	LexInfo                     Code = 1000
	LexUnknownChar               Code = 1001
	LexUnterminatedString        Code = 1002
	LexUnterminatedBlockComment  Code = 1003
	LexBadNumber                 Code = 1004
	LexTokenTooLong              Code = 1005
	LexUnterminatedChar          Code = 1006
	LexBadEscape                 Code = 1007
	LexUnterminatedInterpolation Code = 1008
	LexBadUnicodeEscape          Code = 1009

	// Syntax (2000-2999)
	SynInfo                Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnclosedParen        Code = 2002
	SynUnclosedBrace        Code = 2003
	SynUnclosedBracket      Code = 2004
	SynExpectIdentifier     Code = 2005
	SynExpectType           Code = 2006
	SynExpectExpression     Code = 2007
	SynExpectColon          Code = 2008
	SynExpectSemicolon      Code = 2009
	SynExpectArrow          Code = 2010
	SynInvalidPattern       Code = 2011
	SynDuplicateRecordField Code = 2012
	SynEmptyImportGroup     Code = 2013
	SynExpectModulePath     Code = 2014
	SynExpectIdentAfterAs   Code = 2015
	SynTrailingTokens       Code = 2016
	SynInvalidLazyParam     Code = 2017
	SynInvalidTraitBound    Code = 2018

	// Name resolution / HIR (3000-3999)
	HirInfo                   Code = 3000
	HirUnresolvedName         Code = 3001
	HirDuplicateDefinition    Code = 3002
	HirImportCycle            Code = 3003
	HirUnresolvedImport       Code = 3004
	HirPrivateImport          Code = 3005
	HirUndeclaredModule       Code = 3006
	HirSelfOutsideModule      Code = 3007
	HirDuplicateField         Code = 3008
	HirUnresolvedTraitMethod  Code = 3009
	HirAmbiguousImport        Code = 3010

	// Type checking (4000-4999)
	TypeInfo                  Code = 4000
	TypeMismatch               Code = 4001
	TypeOccursCheck            Code = 4002
	TypeArityMismatch          Code = 4003
	TypeUnboundVariable        Code = 4004
	TypeMissingTraitImpl       Code = 4005
	TypeAmbiguousTraitImpl     Code = 4006
	TypeNonExhaustiveMatch     Code = 4007
	TypeUnreachablePattern     Code = 4008
	TypeRecordFieldMissing     Code = 4009
	TypeRecordFieldUnexpected Code = 4010
	TypeKindMismatch           Code = 4011
	TypeRecursiveWithoutBase   Code = 4012
	TypeDuplicateTraitMethod   Code = 4013
	TypeAssociatedTypeMissing Code = 4014

	// Evaluation (5000-5999)
	EvalInfo               Code = 5000
	EvalDivideByZero        Code = 5001
	EvalIndexOutOfBounds    Code = 5002
	EvalPatternMatchFailed  Code = 5003
	EvalUnboundBuiltin      Code = 5004
	EvalStackOverflow       Code = 5005
	EvalBlackhole           Code = 5006
	EvalAssertionFailed     Code = 5007
	EvalTypeAssertionFailed Code = 5008

	// Derivation / store / fetch / build (6000-6999)
	DerivInfo                 Code = 6000
	DerivHashMismatch          Code = 6001
	DerivMissingOutput         Code = 6002
	StoreCorruptEntry          Code = 6003
	StorePathNotFound          Code = 6004
	StoreGCRootInvalid         Code = 6005
	FetchHashMismatch          Code = 6006
	FetchUnreachable           Code = 6007
	FetchUnsupportedScheme     Code = 6008
	BuildFailed                Code = 6009
	BuildSandboxSetupFailed    Code = 6010
	BuildTimedOut              Code = 6011
	BuildOutputMissing         Code = 6012

	// Project / config (7000-7999)
	ProjInfo                   Code = 7000
	ProjManifestNotFound       Code = 7001
	ProjManifestInvalid        Code = 7002
	ProjDuplicateDependency    Code = 7003
	ProjMissingDependency      Code = 7004
	ProjDependencyCycle        Code = 7005
	ProjLockfileOutOfDate      Code = 7006
	ProjGenerationNotFound     Code = 7007
	ProjSelfDependency         Code = 7008
	ProjDependencyFailed       Code = 7009

	// I/O (8000-8999)
	IOLoadFileError Code = 8000
	IOWriteError    Code = 8001

	// Observability (9000-9999)
	ObsInfo    Code = 9000
	ObsTimings Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                      "Lexical information",
	LexUnknownChar:                "Unknown character",
	LexUnterminatedString:         "Unterminated string literal",
	LexUnterminatedBlockComment:   "Unterminated block comment",
	LexBadNumber:                  "Malformed numeric literal",
	LexTokenTooLong:               "Token exceeds maximum length",
	LexUnterminatedChar:           "Unterminated character literal",
	LexBadEscape:                  "Invalid escape sequence",
	LexUnterminatedInterpolation:  "Unterminated string interpolation",
	LexBadUnicodeEscape:           "Invalid unicode escape",

	SynInfo:                 "Syntax information",
	SynUnexpectedToken:       "Unexpected token",
	SynUnclosedParen:         "Unclosed parenthesis",
	SynUnclosedBrace:         "Unclosed brace",
	SynUnclosedBracket:       "Unclosed bracket",
	SynExpectIdentifier:      "Expected identifier",
	SynExpectType:            "Expected type",
	SynExpectExpression:      "Expected expression",
	SynExpectColon:           "Expected ':'",
	SynExpectSemicolon:       "Expected ';'",
	SynExpectArrow:           "Expected '->'",
	SynInvalidPattern:        "Invalid pattern",
	SynDuplicateRecordField:  "Duplicate record field",
	SynEmptyImportGroup:      "Empty import group",
	SynExpectModulePath:      "Expected module path segment",
	SynExpectIdentAfterAs:    "Expected identifier after 'as'",
	SynTrailingTokens:        "Unexpected trailing tokens",
	SynInvalidLazyParam:      "'lazy' is only valid on a parameter",
	SynInvalidTraitBound:     "Invalid trait bound",

	HirInfo:                  "Name resolution information",
	HirUnresolvedName:        "Unresolved name",
	HirDuplicateDefinition:   "Duplicate definition",
	HirImportCycle:           "Import cycle detected",
	HirUnresolvedImport:      "Unresolved import",
	HirPrivateImport:         "Import of a private item",
	HirUndeclaredModule:      "Undeclared module",
	HirSelfOutsideModule:     "'self' used outside a module path",
	HirDuplicateField:        "Duplicate field in definition",
	HirUnresolvedTraitMethod: "Unresolved trait method",
	HirAmbiguousImport:       "Ambiguous import",

	TypeInfo:                  "Type checking information",
	TypeMismatch:              "Type mismatch",
	TypeOccursCheck:           "Infinite type (occurs check failed)",
	TypeArityMismatch:         "Arity mismatch",
	TypeUnboundVariable:       "Unbound type variable",
	TypeMissingTraitImpl:      "Missing trait implementation",
	TypeAmbiguousTraitImpl:    "Ambiguous trait implementation",
	TypeNonExhaustiveMatch:    "Non-exhaustive match",
	TypeUnreachablePattern:    "Unreachable match arm",
	TypeRecordFieldMissing:    "Missing record field",
	TypeRecordFieldUnexpected: "Unexpected record field",
	TypeKindMismatch:          "Kind mismatch",
	TypeRecursiveWithoutBase:  "Recursive type has no base case",
	TypeDuplicateTraitMethod:  "Duplicate trait method",
	TypeAssociatedTypeMissing: "Missing associated type",

	EvalInfo:                "Evaluation information",
	EvalDivideByZero:        "Division by zero",
	EvalIndexOutOfBounds:    "Index out of bounds",
	EvalPatternMatchFailed:  "No pattern matched the value",
	EvalUnboundBuiltin:      "Unbound builtin",
	EvalStackOverflow:       "Evaluation stack exhausted",
	EvalBlackhole:           "Thunk forced while already being forced",
	EvalAssertionFailed:     "Assertion failed",
	EvalTypeAssertionFailed: "Runtime value does not match expected shape",

	DerivInfo:               "Derivation information",
	DerivHashMismatch:       "Derivation hash mismatch",
	DerivMissingOutput:      "Derivation missing declared output",
	StoreCorruptEntry:       "Corrupt store entry",
	StorePathNotFound:       "Store path not found",
	StoreGCRootInvalid:      "Invalid garbage collection root",
	FetchHashMismatch:       "Fetched content hash mismatch",
	FetchUnreachable:        "Fetch source unreachable",
	FetchUnsupportedScheme:  "Unsupported fetch URL scheme",
	BuildFailed:             "Build failed",
	BuildSandboxSetupFailed: "Sandbox setup failed",
	BuildTimedOut:           "Build timed out",
	BuildOutputMissing:      "Build did not produce a declared output",

	ProjInfo:               "Project information",
	ProjManifestNotFound:   "Manifest not found",
	ProjManifestInvalid:    "Invalid manifest",
	ProjDuplicateDependency: "Duplicate dependency declaration",
	ProjMissingDependency:  "Missing dependency",
	ProjDependencyCycle:    "Dependency cycle detected",
	ProjLockfileOutOfDate:  "Lockfile out of date",
	ProjGenerationNotFound: "Generation not found",
	ProjSelfDependency:     "Package depends on itself",
	ProjDependencyFailed:   "Dependency failed to resolve",

	IOLoadFileError: "Failed to load file",
	IOWriteError:    "Failed to write file",

	ObsInfo:    "Observability information",
	ObsTimings: "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("HIR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EVL%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("BLD%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
