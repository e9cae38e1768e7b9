package printer

import (
	"bytes"
	"fmt"

	"github.com/drkocher/foundryerp/internal/services/overview"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Pallet tare weights in kg, added to the net weight on the document.
const (
	euroPalletKg   = 24.0
	oneWayPalletKg = 14.0
)

// NoteDocument is the render input of a delivery-note PDF: the
// denormalized note view plus the pallet counts entered at dispatch.
type NoteDocument struct {
	View          *overview.NoteView
	EuroPallets   int
	OneWayPallets int
}

// GrossWeight is the net weight plus pallet tare.
func (d NoteDocument) GrossWeight() float64 {
	return d.View.NetWeight + float64(d.EuroPallets)*euroPalletKg + float64(d.OneWayPallets)*oneWayPalletKg
}

// noteLabels holds the per-language captions of the delivery document.
type noteLabels struct {
	Title, Buyer, ShipTo, NoteNumber, DeliveryDate string
	Product, ItemNumber, Quantity                  string
	NetWeight, GrossWeight, EuroPallets, OneWay    string
}

var noteLabelSets = map[string]noteLabels{
	"hu": {
		Title: "Szállítólevél", Buyer: "Vevő", ShipTo: "Szállítási cím",
		NoteNumber: "Szállítólevél száma", DeliveryDate: "Szállítás dátuma",
		Product: "Termék", ItemNumber: "Cikkszám", Quantity: "Mennyiség",
		NetWeight: "Nettó súly", GrossWeight: "Bruttó súly",
		EuroPallets: "Europaletta", OneWay: "Egyutas raklap",
	},
	"de": {
		Title: "Lieferschein", Buyer: "Käufer", ShipTo: "Lieferadresse",
		NoteNumber: "Lieferschein-Nr.", DeliveryDate: "Lieferdatum",
		Product: "Produkt", ItemNumber: "Artikelnummer", Quantity: "Menge",
		NetWeight: "Nettogewicht", GrossWeight: "Bruttogewicht",
		EuroPallets: "Europalette", OneWay: "Einwegpalette",
	},
}

// GenerateDeliveryNotePDF renders a delivery note as an A4 PDF. lang
// selects the caption set ("hu" or "de", falling back to "hu").
func GenerateDeliveryNotePDF(doc NoteDocument, lang string) ([]byte, error) {
	labels, ok := noteLabelSets[lang]
	if !ok {
		labels = noteLabelSets["hu"]
	}
	note := doc.View.Note

	pdf := gofpdf.New("P", "mm", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, translate(labels.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, translate(fmt.Sprintf("%s: %s", labels.NoteNumber, note.NoteNumber)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, translate(fmt.Sprintf("%s: %s", labels.DeliveryDate, note.ShippingDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Buyer and shipping blocks side by side
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 6, translate(labels.Buyer), "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, translate(labels.ShipTo), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	buyer := []string{note.CustomerName, note.CustomerAddress, note.CustomerCountry, note.CustomerTaxNumber}
	ship := []string{note.ShippingName, note.ShippingAddress, note.ShippingCountry}
	for i := 0; i < len(buyer) || i < len(ship); i++ {
		left, right := "", ""
		if i < len(buyer) {
			left = buyer[i]
		}
		if i < len(ship) {
			right = ship[i]
		}
		pdf.CellFormat(90, 5, translate(left), "", 0, "L", false, 0, "")
		pdf.CellFormat(90, 5, translate(right), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Line table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(80, 7, translate(labels.Product), "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 7, translate(labels.ItemNumber), "1", 0, "L", true, 0, "")
	pdf.CellFormat(55, 7, translate(labels.Quantity), "1", 1, "R", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.View.Lines {
		pdf.CellFormat(80, 7, translate(line.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, translate(line.ItemNumber), "1", 0, "L", false, 0, "")
		qty := fmt.Sprintf("%.0f %s", line.Quantity, line.Unit)
		pdf.CellFormat(55, 7, translate(qty), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// Weights and pallets
	pdf.SetFont("Arial", "", 10)
	rows := []struct {
		label string
		value string
	}{
		{labels.EuroPallets, fmt.Sprintf("%d", doc.EuroPallets)},
		{labels.OneWay, fmt.Sprintf("%d", doc.OneWayPallets)},
		{labels.NetWeight, fmt.Sprintf("%.2f kg", doc.View.NetWeight)},
		{labels.GrossWeight, fmt.Sprintf("%.2f kg", doc.GrossWeight())},
	}
	for _, row := range rows {
		pdf.CellFormat(60, 6, translate(row.label+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, translate(row.value), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render delivery note pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// LabelConfig holds the grid geometry of a label sheet.
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultLabelConfig is a 2x4 sheet on A4 with modest margins.
var DefaultLabelConfig = LabelConfig{Cols: 2, Rows: 4, MarginTop: 10, MarginLeft: 8, GapX: 4, GapY: 4}

// Label is the content of one product label.
type Label struct {
	ProductName string
	ItemNumber  string
	OrderNumber string
	Quantity    float64
	Unit        string
}

// GenerateLabelSheetPDF renders product labels in a grid, one QR code
// (encoding the item number) per label.
func GenerateLabelSheetPDF(cfg LabelConfig, labels []Label) ([]byte, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("label grid must be at least 1x1, got %dx%d", cfg.Cols, cfg.Rows)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	pageWidth, pageHeight := 210.0, 297.0
	availW := pageWidth - cfg.MarginLeft*2
	availH := pageHeight - cfg.MarginTop*2
	labelW := (availW - float64(cfg.Cols-1)*cfg.GapX) / float64(cfg.Cols)
	labelH := (availH - float64(cfg.Rows-1)*cfg.GapY) / float64(cfg.Rows)

	perPage := cfg.Cols * cfg.Rows
	if len(labels) == 0 {
		pdf.AddPage()
	}
	for i, label := range labels {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		indexOnPage := i % perPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		pdf.Rect(x, y, labelW, labelH, "D")

		// QR of the item number, right-aligned inside the label
		if label.ItemNumber != "" {
			qrPng, err := qrcode.Encode(label.ItemNumber, qrcode.Low, 256)
			if err != nil {
				return nil, fmt.Errorf("failed to encode label qr: %w", err)
			}
			qrSize := labelH * 0.55
			imgName := fmt.Sprintf("qr_%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
			_ = pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPng))
			pdf.ImageOptions(imgName, x+labelW-qrSize-3, y+(labelH-qrSize)/2, qrSize, qrSize, false, opts, 0, "")
		}

		textW := labelW * 0.6
		pdf.SetXY(x+3, y+4)
		pdf.SetFontSize(11)
		pdf.CellFormat(textW, 6, translate(label.ProductName), "", 0, "L", false, 0, "")

		pdf.SetXY(x+3, y+11)
		pdf.SetFontSize(9)
		pdf.CellFormat(textW, 5, translate(label.ItemNumber), "", 0, "L", false, 0, "")

		pdf.SetXY(x+3, y+17)
		pdf.CellFormat(textW, 5, translate(label.OrderNumber), "", 0, "L", false, 0, "")

		pdf.SetXY(x+3, y+labelH-9)
		pdf.SetFontSize(10)
		qty := fmt.Sprintf("%.0f %s", label.Quantity, label.Unit)
		pdf.CellFormat(textW, 5, translate(qty), "", 0, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render label sheet pdf: %w", err)
	}
	return buf.Bytes(), nil
}
