package model

import "time"

// OutcomeStatus describes what happened to one symbol during a scan.
type OutcomeStatus string

const (
	StatusClassified OutcomeStatus = "CLASSIFIED"
	StatusNoSignal   OutcomeStatus = "NO_SIGNAL"
	StatusSkipped    OutcomeStatus = "SKIPPED"
)

// SkipReason explains why a symbol was excluded from the results.
type SkipReason string

const (
	SkipNone                SkipReason = ""
	SkipMissing             SkipReason = "MISSING"
	SkipInsufficientHistory SkipReason = "INSUFFICIENT_HISTORY"
	SkipIndeterminate       SkipReason = "INDETERMINATE"
	SkipFault               SkipReason = "FAULT"
)

// Outcome records the per-symbol result of a scan.
type Outcome struct {
	Symbol  string
	Status  OutcomeStatus
	Reason  SkipReason
	Detail  string
	Signals []Signal
}

// ScanReport is everything one scan invocation produced.
type ScanReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Result     ScanResult
	Outcomes   []Outcome
}

// Skipped returns the outcomes of symbols excluded from the results.
func (r *ScanReport) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusSkipped {
			out = append(out, o)
		}
	}
	return out
}

// CountBy returns how many symbols were skipped for the given reason.
func (r *ScanReport) CountBy(reason SkipReason) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusSkipped && o.Reason == reason {
			n++
		}
	}
	return n
}

// Outcome returns the outcome recorded for symbol.
func (r *ScanReport) Outcome(symbol string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Symbol == symbol {
			return o, true
		}
	}
	return Outcome{}, false
}
