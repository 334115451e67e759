package card

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/mezonai/poldrop/types"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// Layout in millimetres on an A4 portrait page
const (
	qrX          = 10.0
	qrWidth      = 35.0
	textX        = 55.0
	textWidth    = 140.0
	lineEndX     = 200.0
	pageBreakY   = 250.0
	pageMargin   = 10.0
	cardGap      = 8.0
	qrPixelSize  = 256
	CardsPerPage = 5
)

const (
	SampleFileName  = "sample_wallet_card.pdf"
	cardsFilePrefix = "wallet_cards_"
)

// CardsFileName is the PDF written next to a generated batch
func CardsFileName(stamp string) string {
	return cardsFilePrefix + stamp + ".pdf"
}

// Renderer lays out one printable card per wallet record
type Renderer struct {
	cardsPerPage int
}

func NewRenderer() *Renderer {
	return &Renderer{cardsPerPage: CardsPerPage}
}

// Render writes the PDF for records to w
func (r *Renderer) Render(w io.Writer, records []types.KeyRecord) error {
	pdf, err := r.build(records)
	if err != nil {
		return err
	}
	return errors.Wrap(pdf.Output(w), "write pdf")
}

// RenderFile writes the PDF for records to path
func (r *Renderer) RenderFile(path string, records []types.KeyRecord) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, records); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func (r *Renderer) build(records []types.KeyRecord) (*fpdf.Fpdf, error) {
	if len(records) == 0 {
		return nil, errors.New("no records to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	for i, rec := range records {
		if err := drawCard(pdf, rec); err != nil {
			return nil, errors.Wrapf(err, "card for wallet #%d", rec.WalletNumber)
		}
		if (i+1)%r.cardsPerPage == 0 && i+1 < len(records) {
			pdf.AddPage()
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "layout pdf")
	}
	return pdf, nil
}

func drawCard(pdf *fpdf.Fpdf, rec types.KeyRecord) error {
	if pdf.GetY() > pageBreakY {
		pdf.AddPage()
	}
	startY := pdf.GetY()

	// MetaMask imports the bare hex key
	png, err := qrcode.Encode(strings.TrimPrefix(rec.PrivateKey, "0x"), qrcode.Medium, qrPixelSize)
	if err != nil {
		return errors.Wrap(err, "encode qr code")
	}
	imageName := fmt.Sprintf("qr-%d-%s", rec.WalletNumber, rec.PublicKey)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imageName, qrX, startY, qrWidth, 0, false, opts, 0, "")

	pdf.SetXY(textX, startY)
	field(pdf, "Public Key:", "Courier", 8, rec.PublicKey, true)
	field(pdf, "Private Key:", "Courier", 8, rec.PrivateKey, true)
	field(pdf, "Recovery Phrase:", "Helvetica", 9, rec.Mnemonic, false)

	y := pdf.GetY()
	if bottom := startY + qrWidth; y < bottom {
		y = bottom
	}
	pdf.Line(qrX, y, lineEndX, y)
	pdf.SetY(y + cardGap)
	return pdf.Error()
}

func field(pdf *fpdf.Fpdf, label, family string, size float64, value string, wrap bool) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(textX)
	pdf.CellFormat(0, 6, label, "", 2, "L", false, 0, "")

	pdf.SetFont(family, "", size)
	pdf.SetX(textX)
	if wrap {
		pdf.MultiCell(textWidth, 4, value, "", "L", false)
		pdf.Ln(1)
		return
	}
	pdf.CellFormat(0, 6, value, "", 2, "L", false, 0, "")
}

// SampleRecord is a fixed placeholder wallet for previewing the layout
func SampleRecord(now time.Time) types.KeyRecord {
	return types.KeyRecord{
		WalletNumber: 1,
		PublicKey:    "0x1234567890abcdef1234567890abcdef12345678",
		PrivateKey:   "0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890",
		Mnemonic:     "abandon ability able about above absent absorb abstract absurd abuse access accident",
		CreatedAt:    types.NewTimestamp(now),
	}
}
