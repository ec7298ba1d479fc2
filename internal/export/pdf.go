package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/haulbridge/freight-tasks/internal/model"
)

type PDFGenerator struct {
	fontName string
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{fontName: "Helvetica"}
}

// Generate renders a printable summary sheet for one task and its bids.
func (g *PDFGenerator) Generate(task model.Task, bids []model.Bid) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Transport task #%d", task.ID), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, task.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.addField(pdf, "Status", string(task.Status))
	g.addField(pdf, "Pickup", task.Pickup)
	g.addField(pdf, "Dropoff", task.Dropoff)
	if task.ScheduledAt != nil {
		g.addField(pdf, "Scheduled", formatTime(*task.ScheduledAt))
	}
	if task.Price != nil {
		g.addField(pdf, "Price", formatAmount(*task.Price))
	}
	g.addField(pdf, "Paid", yesNo(task.Paid))
	if task.CustomerID != nil {
		g.addField(pdf, "Customer", fmt.Sprintf("#%d", *task.CustomerID))
	}
	if task.CarrierID != nil {
		g.addField(pdf, "Carrier", fmt.Sprintf("#%d", *task.CarrierID))
	}
	g.addField(pdf, "Created", formatTime(task.CreatedAt))
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Bids (%d)", len(bids)), "", 1, "L", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	headers := []string{"Carrier", "Amount", "Status", "Submitted"}
	widths := []float64{60, 35, 35, 50}
	g.drawRow(pdf, headers, widths, true)
	for _, bid := range bids {
		carrier := fmt.Sprintf("#%d", bid.CarrierID)
		if bid.Carrier != nil {
			carrier = bid.Carrier.Email
		}
		row := []string{
			carrier,
			formatAmount(bid.Amount),
			string(bid.Status),
			formatTime(bid.CreatedAt),
		}
		g.drawRow(pdf, row, widths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) addField(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *PDFGenerator) drawRow(pdf *gofpdf.Fpdf, cells []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
