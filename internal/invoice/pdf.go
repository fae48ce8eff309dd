package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/noah-isme/backend-agency/internal/fare"
	"github.com/noah-isme/backend-agency/internal/obs"
)

// PDFRenderer produces the printable invoice document.
type PDFRenderer struct {
	AgencyName    string
	AgencyAddress string
	AgencyPhone   string
}

// Render builds the invoice PDF and returns the bytes plus a filename.
func (p PDFRenderer) Render(inv Invoice, customerName, customerPhone string) ([]byte, string, error) {
	start := time.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNo, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(nonEmpty(p.AgencyName, "Travel Agency")))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	if p.AgencyAddress != "" {
		pdf.Cell(0, 5, p.AgencyAddress)
		pdf.Ln(5)
	}
	if p.AgencyPhone != "" {
		pdf.Cell(0, 5, "Tel: "+p.AgencyPhone)
		pdf.Ln(5)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 14)
	title := "INVOICE"
	if inv.Status == StatusVoid {
		title = "INVOICE (VOID)"
	}
	pdf.Cell(0, 8, title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Invoice No : "+inv.InvoiceNo)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date       : "+inv.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Billed to  : "+nonEmpty(customerName, "-"))
	pdf.Ln(6)
	if customerPhone != "" {
		pdf.Cell(0, 6, "Phone      : "+customerPhone)
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, "Source     : "+string(inv.Source))
	pdf.Ln(10)

	// Passenger table.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Passenger", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Sector", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Travel Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(55, 7, "Price", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range inv.Items {
		pdf.CellFormat(60, 7, nonEmpty(it.PassengerName, "-"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, nonEmpty(it.Sector, "-"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, it.TravelDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, formatMoney(it.UnitPrice, inv.Currency), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	for _, row := range summaryRows(inv) {
		pdf.SetFont("Helvetica", "", 10)
		if row.label == "Amount due" {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(135, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(55, 6, formatMoney(row.amount, inv.Currency), "", 1, "R", false, 0, "")
	}

	if inv.Status == StatusVoid {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Voided: "+nonEmpty(inv.VoidReason, "no reason recorded"), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render invoice pdf: %w", err)
	}
	if obs.PDFRenderSeconds != nil {
		obs.PDFRenderSeconds.Observe(time.Since(start).Seconds())
	}

	filename := fmt.Sprintf("%s.pdf", strings.ReplaceAll(inv.InvoiceNo, "/", "-"))
	return buf.Bytes(), filename, nil
}

type summaryRow struct {
	label  string
	amount fare.Money
}

// summaryRows lays out the totals block. FaceValue already includes the
// service addition, so the subtotal backs it out.
func summaryRows(inv Invoice) []summaryRow {
	return []summaryRow{
		{"Subtotal", inv.FaceValue - inv.Addition},
		{"Service addition", inv.Addition},
		{"Total", inv.FaceValue},
		{"Deposit deducted", inv.DepositDeducted},
		{"Amount due", inv.AmountDue},
	}
}

func formatMoney(v fare.Money, currency string) string {
	whole := v / 100
	frac := v % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%s %d.%02d", currency, whole, frac)
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
