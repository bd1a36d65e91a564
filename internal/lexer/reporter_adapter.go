package lexer

import "neve/internal/diag"

// ReporterAdapter wraps a Bag so a Lexer can be handed a diag.Reporter.
type ReporterAdapter struct {
	Bag *diag.Bag
}

// Reporter returns a diag.Reporter that forwards diagnostics to the adapter's bag.
func (r *ReporterAdapter) Reporter() diag.Reporter {
	return &diag.BagReporter{Bag: r.Bag}
}
