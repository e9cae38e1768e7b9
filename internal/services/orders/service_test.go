package orders

import (
	"errors"
	"testing"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
)

func openOrdersStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(":memory:", true)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.AutoMigrate(&models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store
}

func seedOrder(t *testing.T, svc *Service, orderNumber string, qty float64) int64 {
	t.Helper()
	id, err := svc.Create(&models.Order{
		CustomerName: "Muster GmbH",
		OrderNumber:  orderNumber,
		Lines: []models.OrderLine{
			{ProductID: 101, Quantity: qty, Unit: "db"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return id
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	svc := NewService(openOrdersStore(t))

	first := seedOrder(t, svc, "PO-1", 10)
	second := seedOrder(t, svc, "PO-2", 20)
	if second != first+1 {
		t.Errorf("Expected sequential ids, got %d then %d", first, second)
	}

	order, err := svc.Get(first)
	if err != nil {
		t.Fatalf("Failed to load order: %v", err)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(order.Lines))
	}
	if order.Lines[0].Remaining != 10 {
		t.Errorf("New line should start fully undelivered, remaining=%v", order.Lines[0].Remaining)
	}
}

func TestCreate_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(openOrdersStore(t))

	_, err := svc.Create(&models.Order{
		OrderNumber: "PO-BAD",
		Lines:       []models.OrderLine{{ProductID: 101, Quantity: 0}},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity, got %v", err)
	}
}

func TestDecreaseRemaining_Bounds(t *testing.T) {
	svc := NewService(openOrdersStore(t))
	orderID := seedOrder(t, svc, "PO-1", 10)

	if err := svc.DecreaseRemaining(orderID, 101, 4); err != nil {
		t.Fatalf("Decrease by 4 failed: %v", err)
	}
	remaining, err := svc.Remaining(orderID, 101)
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != 6 {
		t.Errorf("Expected remaining 6, got %v", remaining)
	}

	// More than the balance is refused and leaves the line untouched.
	if err := svc.DecreaseRemaining(orderID, 101, 7); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for over-limit decrease, got %v", err)
	}
	if remaining, _ = svc.Remaining(orderID, 101); remaining != 6 {
		t.Errorf("Remaining changed by a rejected decrease: %v", remaining)
	}

	if err := svc.DecreaseRemaining(orderID, 101, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for zero, got %v", err)
	}
	if err := svc.DecreaseRemaining(orderID, 101, -2); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for negative, got %v", err)
	}
	if err := svc.DecreaseRemaining(orderID, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown line, got %v", err)
	}

	// Draining to exactly zero is allowed.
	if err := svc.DecreaseRemaining(orderID, 101, 6); err != nil {
		t.Fatalf("Decrease to zero failed: %v", err)
	}
	if remaining, _ = svc.Remaining(orderID, 101); remaining != 0 {
		t.Errorf("Expected remaining 0, got %v", remaining)
	}
}

func TestReplaceLines_ResetsRemaining(t *testing.T) {
	svc := NewService(openOrdersStore(t))
	orderID := seedOrder(t, svc, "PO-1", 10)

	if err := svc.DecreaseRemaining(orderID, 101, 4); err != nil {
		t.Fatalf("Decrease failed: %v", err)
	}
	err := svc.ReplaceLines(orderID, []models.OrderLine{
		{ProductID: 101, Quantity: 12, Unit: "db"},
		{ProductID: 102, Quantity: 5, Unit: "db"},
	})
	if err != nil {
		t.Fatalf("ReplaceLines failed: %v", err)
	}

	order, err := svc.Get(orderID)
	if err != nil {
		t.Fatalf("Failed to load order: %v", err)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(order.Lines))
	}
	for _, line := range order.Lines {
		if line.Remaining != line.Quantity {
			t.Errorf("Product %d: remaining %v not reset to quantity %v", line.ProductID, line.Remaining, line.Quantity)
		}
	}
}

func TestListOpenLines_SkipsDrainedLines(t *testing.T) {
	svc := NewService(openOrdersStore(t))
	first := seedOrder(t, svc, "PO-1", 10)
	second := seedOrder(t, svc, "PO-2", 8)

	if err := svc.DecreaseRemaining(first, 101, 10); err != nil {
		t.Fatalf("Decrease failed: %v", err)
	}

	open, err := svc.ListOpenLines()
	if err != nil {
		t.Fatalf("ListOpenLines failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Expected 1 open line, got %d", len(open))
	}
	if open[0].Order.ID != second || open[0].Order.OrderNumber != "PO-2" {
		t.Errorf("Wrong header attached: %+v", open[0].Order)
	}
	if open[0].Line.Remaining != 8 {
		t.Errorf("Expected remaining 8, got %v", open[0].Line.Remaining)
	}
}

func TestDelete_RemovesOrderAndLines(t *testing.T) {
	svc := NewService(openOrdersStore(t))
	orderID := seedOrder(t, svc, "PO-1", 10)

	if err := svc.Delete(orderID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(orderID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Remaining(orderID, 101); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected lines gone after delete, got %v", err)
	}
}
