package manifest

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

var columns = []struct {
	title string
	width float64
}{
	{"Seat", 14},
	{"Name", 58},
	{"Fare", 14},
	{"Age", 12},
	{"State", 22},
	{"PNR", 20},
	{"Kg", 14},
	{"Bag", 14},
	{"SSR", 109},
}

// WritePDF renders the manifest as an A4 landscape table
func (m *Manifest) WritePDF(w io.Writer) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Passenger manifest "+m.Flight, true)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		for _, c := range columns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s  %s  %s-%s  %s", m.Flight, m.Date, m.Departure, m.Arrival, m.Registration)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})
	pdf.AddPage()

	for _, r := range m.Rows {
		age := ""
		if r.Age >= 0 {
			age = strconv.Itoa(r.Age)
		}
		ssr := r.SSRText
		if r.UnaccompaniedMinor && ssr == "" {
			ssr = "UMNR"
		}
		cells := []string{
			r.Seat,
			r.Name,
			r.FareType,
			age,
			r.State.String(),
			r.BookingRef,
			strconv.FormatFloat(r.WeightKg, 'f', 0, 64),
			strconv.FormatFloat(r.BagKg, 'f', 1, 64),
			ssr,
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Adults %d  Children %d  Infants %d  Total %d",
		m.Fares.Adults, m.Fares.Children, m.Fares.Infants, m.Fares.Total()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Booked %d  Checked %d  Boarded %d  Flown %d",
		m.Counts.Booked, m.Counts.Checked, m.Counts.Boarded, m.Counts.Flown), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Passenger mass %.0f kg  Baggage %.1f kg", m.TotalWeightKg, m.TotalBagKg), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render manifest pdf: %w", err)
	}
	return nil
}
