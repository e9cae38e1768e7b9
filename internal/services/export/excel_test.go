package export

import (
	"path/filepath"
	"testing"

	"github.com/drkocher/foundryerp/internal/services/overview"
	"github.com/xuri/excelize/v2"
)

func sampleLines() []overview.OpenLine {
	return []overview.OpenLine{
		{
			OrderID: 1, OrderNumber: "PO-2024-117", CustomerName: "Muster GmbH",
			CustomerAddress: "Musterstraße 1, 70173 Stuttgart",
			ShippingName:    "Muster GmbH Werk 2", ShippingAddress: "Werkstraße 8, 70190 Stuttgart",
			ReceivedAt: "2024-08-15", DueDate: "2024-09-30",
			ProductID: 101, ProductName: "Öntvény ház A", ItemNumber: "DRK-1001",
			Plant: "öntés,szemcseszórás", OrderedQty: 500, RemainingQty: 380, Unit: "db",
		},
	}
}

func TestOpenOrdersWorkbook(t *testing.T) {
	f, err := OpenOrdersWorkbook(sampleLines())
	if err != nil {
		t.Fatalf("Workbook build failed: %v", err)
	}
	defer f.Close()

	if header, _ := f.GetCellValue(openOrdersSheet, "A1"); header != "Order ID" {
		t.Errorf("Unexpected first header: %q", header)
	}
	if number, _ := f.GetCellValue(openOrdersSheet, "B2"); number != "PO-2024-117" {
		t.Errorf("Unexpected order number cell: %q", number)
	}
	if remaining, _ := f.GetCellValue(openOrdersSheet, "M2"); remaining != "380" {
		t.Errorf("Unexpected remaining cell: %q", remaining)
	}
	if unit, _ := f.GetCellValue(openOrdersSheet, "N2"); unit != "db" {
		t.Errorf("Unexpected unit cell: %q", unit)
	}
}

func TestWriteOpenOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open_orders.xlsx")
	if err := WriteOpenOrders(path, sampleLines()); err != nil {
		t.Fatalf("WriteOpenOrders failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Saved workbook does not open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(openOrdersSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected header + 1 data row, got %d rows", len(rows))
	}
}
