package printer

import (
	"bytes"
	"testing"

	"github.com/drkocher/foundryerp/internal/models"
	"github.com/drkocher/foundryerp/internal/services/overview"
)

func sampleView() *overview.NoteView {
	return &overview.NoteView{
		Note: models.DeliveryNote{
			NoteNumber:      "DRK-20240101-001",
			ShippingDate:    "2024-01-01 10:00:00",
			CustomerName:    "Muster GmbH",
			CustomerAddress: "Musterstraße 1, 70173 Stuttgart",
			CustomerCountry: "DE",
			ShippingName:    "Muster GmbH Werk 2",
			ShippingAddress: "Werkstraße 8, 70190 Stuttgart",
			ShippingCountry: "DE",
		},
		Lines: []overview.NoteLine{
			{ProductID: 101, ProductName: "Öntvény ház A", ItemNumber: "DRK-1001", Quantity: 120, Unit: "db", UnitWeight: 0.85},
		},
		NetWeight: 102,
	}
}

func TestGrossWeight(t *testing.T) {
	doc := NoteDocument{View: sampleView(), EuroPallets: 2, OneWayPallets: 1}
	// 102 net + 2*24 + 1*14 tare
	if got := doc.GrossWeight(); got != 164 {
		t.Errorf("Expected gross weight 164, got %v", got)
	}
}

func TestGenerateDeliveryNotePDF(t *testing.T) {
	doc := NoteDocument{View: sampleView(), EuroPallets: 2}

	for _, lang := range []string{"hu", "de", "fr"} { // unknown lang falls back to hu
		data, err := GenerateDeliveryNotePDF(doc, lang)
		if err != nil {
			t.Fatalf("Lang %s: generation failed: %v", lang, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Errorf("Lang %s: output is not a PDF", lang)
		}
		if len(data) < 1000 {
			t.Errorf("Lang %s: suspiciously small document (%d bytes)", lang, len(data))
		}
	}
}

func TestGenerateLabelSheetPDF(t *testing.T) {
	labels := make([]Label, 10) // more than one 2x4 page
	for i := range labels {
		labels[i] = Label{
			ProductName: "Öntvény ház A",
			ItemNumber:  "DRK-1001",
			OrderNumber: "PO-2024-117",
			Quantity:    48,
			Unit:        "db",
		}
	}
	data, err := GenerateLabelSheetPDF(DefaultLabelConfig, labels)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Output is not a PDF")
	}

	// An empty sheet still renders a valid document.
	data, err = GenerateLabelSheetPDF(DefaultLabelConfig, nil)
	if err != nil {
		t.Fatalf("Empty sheet failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Empty sheet output is not a PDF")
	}

	if _, err := GenerateLabelSheetPDF(LabelConfig{Cols: 0, Rows: 4}, labels); err == nil {
		t.Error("Expected an error for a degenerate grid")
	}
}
