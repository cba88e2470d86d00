// Package ticket renders a confirmed booking as a printable PDF ticket with
// an embedded QR code of the booking reference.
package ticket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/reeltime/seat-reservation/internal/domain"
)

const qrSizePx = 300

// GeneratePDF builds the ticket for a confirmed booking. The QR code encodes
// only the booking reference; validation happens against the engine, so no
// sensitive data ends up in the image.
func GeneratePDF(booking *domain.Booking) ([]byte, error) {
	if booking.Status != domain.BookingConfirmed {
		return nil, fmt.Errorf("cannot generate a ticket for a %s booking", booking.Status)
	}

	qrPNG, err := qrcode.Encode(booking.Reference, qrcode.Medium, qrSizePx)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, "ReelTime Cinema Ticket", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	imgName := "qr_" + booking.Reference
	pdf.RegisterImageOptionsReader(imgName, imgOpts, bytes.NewReader(qrPNG))

	// Centered 80x80mm QR block on an A4 page (210mm wide).
	qrSide := 80.0
	pdf.ImageOptions(imgName, (210-qrSide)/2, pdf.GetY(), qrSide, qrSide, false, imgOpts, 0, "")
	pdf.SetY(pdf.GetY() + qrSide + 8)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, booking.Reference, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 12)
	lines := []struct {
		label string
		value string
	}{
		{"Showtime", booking.ShowtimeID},
		{"Seats", strings.Join(booking.SeatIDs, ", ")},
		{"Total", "$" + booking.TotalAmount.StringFixed(2)},
		{"Booked at", booking.CreatedAt.Format("Mon, 02 Jan 2006 15:04 MST")},
	}

	for _, line := range lines {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(40, 8, line.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 8, line.value, "", 1, "L", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}

	return buf.Bytes(), nil
}
