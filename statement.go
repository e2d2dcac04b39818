package bankledger

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// FormatAmount renders amount in currency with its symbol and minor units,
// e.g. "€1,234.50". Unknown currencies fall back to the plain decimal.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// RenderStatement writes a PDF listing the customer's accounts and the given
// ledger entries.
func RenderStatement(w io.Writer, c *Customer, entries []TransferEntry, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Statement "+c.ID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Account statement", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s)", c.FullName(), c.ID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issued "+now.Format(dateLayout), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Accounts", "", 1, "L", false, 0, "")
	header(pdf, []string{"Account", "Type", "Details", "Balance"}, []float64{30, 30, 70, 60})
	pdf.SetFont("Helvetica", "", 10)
	for _, a := range c.Accounts {
		details := ""
		switch a.Kind() {
		case KindSavings:
			details = fmt.Sprintf("rate %s%%, accrued %s", a.EffectiveRate().Shift(2).String(), a.LastAccrual())
		case KindFX:
			details = a.Currency()
		}
		pdf.CellFormat(30, 7, strconv.Itoa(a.ID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, a.Kind().String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, details, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, tr(FormatAmount(a.Balance, a.Currency())), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Transfers", "", 1, "L", false, 0, "")
	widths := []float64{32, 22, 22, 40, 34, 40}
	header(pdf, []string{"Date", "From", "To", "Target", "Amount", "Status"}, widths)
	pdf.SetFont("Helvetica", "", 9)
	if len(entries) == 0 {
		pdf.CellFormat(0, 7, "No transfers in this period.", "1", 1, "C", false, 0, "")
	}
	for _, e := range entries {
		amount := FormatAmount(e.Amount, BaseCurrency)
		if e.FromCustomerID == c.ID {
			amount = "-" + amount
		}
		status := string(e.Status)
		if e.Status == StatusFailed {
			status = e.Error
		}
		to := ""
		if e.ToAccID != 0 {
			to = strconv.Itoa(e.ToAccID)
		}
		cells := []string{
			time.UnixMilli(e.TS).Format("2006-01-02 15:04"),
			strconv.Itoa(e.FromAccID),
			to,
			e.Target,
			amount,
			status,
		}
		for i, cell := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i], 7, tr(cell), "1", ln, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}

func header(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, col, "1", ln, "L", true, 0, "")
	}
}
