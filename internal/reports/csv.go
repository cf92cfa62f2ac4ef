package reports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// csvStreamer buffers CSV output and flushes in chunks so large exports do
// not hold the whole file in memory.
type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

var csvPrinter = message.NewPrinter(language.MustParse("en-IN"))

func formatAmount(v float64) string {
	return csvPrinter.Sprintf("%.2f", v)
}

func formatQty(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// WriteSalesRegisterCSV streams the sales register.
func WriteSalesRegisterCSV(w io.Writer, report *SalesRegister) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Report: Sales Register | %s to %s", report.From, report.To)); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Bill No", "Date", "Customer", "Mode", "Subtotal", "Tax", "Grand Total"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{
			row.Number,
			row.BillDate.Format("2006-01-02"),
			row.CustomerName,
			row.PaymentMode,
			formatAmount(row.Subtotal),
			formatAmount(row.TaxTotal),
			formatAmount(row.GrandTotal),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", "", "", ""}); err != nil {
		return err
	}

	modes := make([]string, 0, len(report.ModeTotals))
	for mode := range report.ModeTotals {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	for _, mode := range modes {
		if err := streamer.writeRow([]string{"Totals", "", "", mode, "", "", formatAmount(report.ModeTotals[mode])}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"Totals", "", "", "ALL", formatAmount(report.Subtotal), formatAmount(report.TaxTotal), formatAmount(report.GrandTotal)}); err != nil {
		return err
	}
	return streamer.Close()
}

// WriteGstSummaryCSV streams the GST summary.
func WriteGstSummaryCSV(w io.Writer, report *GstSummary) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Report: GST Summary | %s to %s", report.From, report.To)); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"GST %", "Taxable Value", "Tax Amount"}); err != nil {
		return err
	}
	for _, slab := range report.Slabs {
		if err := streamer.writeRow([]string{
			fmt.Sprintf("%g", slab.GstPct),
			formatAmount(slab.TaxableValue),
			formatAmount(slab.TaxAmount),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"Totals", formatAmount(report.TotalTaxable), formatAmount(report.TotalTax)}); err != nil {
		return err
	}
	return streamer.Close()
}

// WriteItemSalesCSV streams the item-wise sales report.
func WriteItemSalesCSV(w io.Writer, rows []ItemSalesRow) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow([]string{"Product", "Qty Sold", "Revenue"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := streamer.writeRow([]string{row.ProductName, formatQty(row.QtySold), formatAmount(row.Revenue)}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// WriteLowStockCSV streams the low-stock report.
func WriteLowStockCSV(w io.Writer, rows []LowStockRow) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow([]string{"Product", "Company", "Total Stock"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := streamer.writeRow([]string{row.Name, row.Company, formatQty(row.TotalStock)}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// WriteExpiryCSV streams the near-expiry report.
func WriteExpiryCSV(w io.Writer, rows []ExpiryRow) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow([]string{"Product", "Batch No", "Expiry", "Stock"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := streamer.writeRow([]string{row.ProductName, row.BatchNo, row.Expiry, formatQty(row.StockQty)}); err != nil {
			return err
		}
	}
	return streamer.Close()
}
