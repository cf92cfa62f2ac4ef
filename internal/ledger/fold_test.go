package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildStatementClosingEqualsFold(t *testing.T) {
	entries := []Entry{
		{Kind: KindCredit, Number: "B00001", At: day(1), Seq: 1, Amount: 500},
		{Kind: KindSettlement, Number: "PV-000001", At: day(2), Seq: 1, Amount: 300},
		{Kind: KindCredit, Number: "B00002", At: day(5), Seq: 2, Amount: 250.50},
		{Kind: KindSettlement, Number: "PV-000002", At: day(9), Seq: 2, Amount: 100},
	}

	stmt := BuildStatement(1000, entries, time.Time{}, time.Time{})
	require.InDelta(t, 1000+500+250.50-300-100, stmt.Closing, 1e-9)
	require.InDelta(t, 750.50, stmt.TotalCredit, 1e-9)
	require.InDelta(t, 400, stmt.TotalSettlement, 1e-9)
	require.InDelta(t, 1000, stmt.Opening, 1e-9)
	require.Len(t, stmt.Rows, 4)
}

func TestBuildStatementRunningBalances(t *testing.T) {
	entries := []Entry{
		{Kind: KindSettlement, Number: "PV-000001", At: day(2), Seq: 1, Amount: 300},
		{Kind: KindCredit, Number: "B00001", At: day(1), Seq: 1, Amount: 500},
	}

	stmt := BuildStatement(100, entries, time.Time{}, time.Time{})
	require.Len(t, stmt.Rows, 2)
	require.Equal(t, "B00001", stmt.Rows[0].Number)
	require.InDelta(t, 600, stmt.Rows[0].Balance, 1e-9)
	require.Equal(t, "PV-000001", stmt.Rows[1].Number)
	require.InDelta(t, 300, stmt.Rows[1].Balance, 1e-9)
}

func TestBuildStatementWindowOpening(t *testing.T) {
	// Opening 1000 owed to the shop, credit sale 500 on day 1, payment 300 on
	// day 2. The day-2 window must show opening 1500 and closing 1200.
	entries := []Entry{
		{Kind: KindCredit, Number: "B00001", At: day(1), Seq: 1, Amount: 500},
		{Kind: KindSettlement, Number: "PV-000001", At: day(2), Seq: 1, Amount: 300},
	}

	full := BuildStatement(1000, entries, time.Time{}, time.Time{})
	require.InDelta(t, 1200, full.Closing, 1e-9)

	windowed := BuildStatement(1000, entries, day(2), day(2))
	require.InDelta(t, 1500, windowed.Opening, 1e-9)
	require.InDelta(t, 300, windowed.TotalSettlement, 1e-9)
	require.InDelta(t, 0, windowed.TotalCredit, 1e-9)
	require.InDelta(t, 1200, windowed.Closing, 1e-9)
	require.Len(t, windowed.Rows, 1)
}

func TestBuildStatementWindowComposes(t *testing.T) {
	entries := []Entry{
		{Kind: KindCredit, At: day(1), Seq: 1, Amount: 120},
		{Kind: KindSettlement, At: day(3), Seq: 1, Amount: 70},
		{Kind: KindCredit, At: day(4), Seq: 2, Amount: 45},
		{Kind: KindSettlement, At: day(8), Seq: 2, Amount: 20},
		{Kind: KindCredit, At: day(9), Seq: 3, Amount: 15},
	}
	from, to := day(3), day(8)

	whole := BuildStatement(500, entries, from, to)

	// Equivalent computation: fold pre-window entries into the opening, then
	// build an unwindowed statement over only the in-window entries.
	var pre []Entry
	var within []Entry
	for _, e := range entries {
		switch {
		case e.At.Before(from):
			pre = append(pre, e)
		case e.At.After(to):
		default:
			within = append(within, e)
		}
	}
	opening := 500.0
	for _, e := range pre {
		opening += signed(e)
	}
	parts := BuildStatement(opening, within, time.Time{}, time.Time{})

	require.InDelta(t, parts.Opening, whole.Opening, 1e-9)
	require.InDelta(t, parts.Closing, whole.Closing, 1e-9)
	require.Equal(t, len(parts.Rows), len(whole.Rows))
}

func TestBuildStatementTieBreakBySeq(t *testing.T) {
	entries := []Entry{
		{Kind: KindCredit, Number: "B00002", At: day(4), Seq: 9, Amount: 10},
		{Kind: KindCredit, Number: "B00001", At: day(4), Seq: 3, Amount: 20},
	}

	stmt := BuildStatement(0, entries, time.Time{}, time.Time{})
	require.Equal(t, "B00001", stmt.Rows[0].Number)
	require.Equal(t, "B00002", stmt.Rows[1].Number)
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "1,200.00 Dr", FormatAmount(1200, PartyCustomer))
	require.Equal(t, "1,200.00 Cr", FormatAmount(-1200, PartyCustomer))
	require.Equal(t, "3,500.00 Cr", FormatAmount(3500, PartySupplier))
	require.Equal(t, "3,500.00 Dr", FormatAmount(-3500, PartySupplier))
	require.Equal(t, "0.00", FormatAmount(0, PartySupplier))
}
