package export

import (
	"fmt"

	"github.com/drkocher/foundryerp/internal/services/overview"
	"github.com/xuri/excelize/v2"
)

const openOrdersSheet = "Open orders"

// OpenOrdersWorkbook builds an xlsx workbook of the open order lines,
// one row per undelivered line.
func OpenOrdersWorkbook(lines []overview.OpenLine) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", openOrdersSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{
		"Order ID", "Order number", "Customer", "Customer address",
		"Shipping name", "Shipping address", "Received", "Due date",
		"Product", "Item number", "Plant", "Ordered", "Remaining", "Unit",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(openOrdersSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, line := range lines {
		values := []interface{}{
			line.OrderID, line.OrderNumber, line.CustomerName, line.CustomerAddress,
			line.ShippingName, line.ShippingAddress, line.ReceivedAt, line.DueDate,
			line.ProductName, line.ItemNumber, line.Plant,
			line.OrderedQty, line.RemainingQty, line.Unit,
		}
		for c, value := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(openOrdersSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
			}
		}
	}

	if err := f.SetColWidth(openOrdersSheet, "A", "N", 16); err != nil {
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}
	return f, nil
}

// WriteOpenOrders saves the open-order workbook at path.
func WriteOpenOrders(path string, lines []overview.OpenLine) error {
	f, err := OpenOrdersWorkbook(lines)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
