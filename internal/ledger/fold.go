package ledger

import (
	"math"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BuildStatement folds merged credit and settlement entries into a windowed
// statement.
//
// Ordering is (At, Seq), ties stable in merge order; Seq is the persistent
// row id of the underlying record, so the order is deterministic across runs.
// A zero `from` means the stored opening balance is used as-is; otherwise all
// entries strictly before `from` are folded into it. A zero `to` leaves the
// window open-ended (callers default it to now before persisting or caching).
func BuildStatement(opening float64, entries []Entry, from, to time.Time) Statement {
	merged := make([]Entry, len(entries))
	copy(merged, entries)
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].At.Equal(merged[j].At) {
			return merged[i].At.Before(merged[j].At)
		}
		return merged[i].Seq < merged[j].Seq
	})

	stmt := Statement{From: from, To: to}

	windowOpening := opening
	var window []Entry
	for _, e := range merged {
		switch {
		case !from.IsZero() && e.At.Before(from):
			windowOpening += signed(e)
		case !to.IsZero() && e.At.After(to):
			// past the window, ignore
		default:
			window = append(window, e)
		}
	}

	stmt.Opening = windowOpening
	running := windowOpening
	for _, e := range window {
		running += signed(e)
		stmt.Rows = append(stmt.Rows, Row{Entry: e, Balance: running})
		if e.Kind == KindCredit {
			stmt.TotalCredit += e.Amount
		} else {
			stmt.TotalSettlement += e.Amount
		}
	}
	stmt.Closing = windowOpening + stmt.TotalCredit - stmt.TotalSettlement
	return stmt
}

// CloseBalance folds the full history into the opening balance with no
// window. This is the invariant the denormalized balance column must match;
// the drift scan repairs the column to this value.
func CloseBalance(opening float64, entries []Entry) float64 {
	balance := opening
	for _, e := range entries {
		balance += signed(e)
	}
	return balance
}

func signed(e Entry) float64 {
	if e.Kind == KindCredit {
		return e.Amount
	}
	return -e.Amount
}

var amountPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders an amount with its Dr/Cr suffix for the party type.
// Customer balances are receivable: positive shows Dr. Supplier balances are
// payable: positive shows Cr. Both ledgers run through the same fold; only
// the display direction differs.
func FormatAmount(amount float64, party PartyType) string {
	suffix := "Dr"
	if (party == PartyCustomer) == (amount < 0) {
		suffix = "Cr"
	}
	if amount == 0 {
		return amountPrinter.Sprintf("%.2f", 0.0)
	}
	return amountPrinter.Sprintf("%.2f %s", math.Abs(amount), suffix)
}
