package orders

import (
	"errors"
	"fmt"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when an order or order line does not exist
	ErrNotFound = errors.New("order not found")
	// ErrInvalidQuantity is returned for zero, negative or over-limit quantities
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Service is the order ledger: ordered vs. remaining quantity per order
// line, decremented by deliveries. All writes go through the orders
// store; quantity bounds are enforced here, not at the caller.
type Service struct {
	db *database.Store
}

// NewService creates a new order ledger
func NewService(db *database.Store) *Service {
	return &Service{db: db}
}

// OpenLine is one order line with remaining quantity, together with its
// order header. Product attributes live in a different store and are
// joined by the overview layer.
type OpenLine struct {
	Order models.Order
	Line  models.OrderLine
}

// Create persists an order with its lines in one store transaction.
// When the id is unset it is assigned as max existing id + 1 (single
// process assumption). Every line starts fully undelivered, so the
// remaining quantity is set to the ordered quantity.
func (s *Service) Create(order *models.Order) (int64, error) {
	for i := range order.Lines {
		if order.Lines[i].Quantity <= 0 {
			return 0, fmt.Errorf("line for product %d: %w", order.Lines[i].ProductID, ErrInvalidQuantity)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if order.ID == 0 {
			var maxID int64
			if err := tx.Model(&models.Order{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
				return fmt.Errorf("failed to compute next order id: %w", err)
			}
			order.ID = maxID + 1
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			order.Lines[i].Remaining = order.Lines[i].Quantity
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

// Update rewrites the order header and replaces all lines. Replacing a
// line resets its remaining quantity to the new ordered quantity, which
// erases partial-delivery history. Orders are expected to be edited
// only before any delivery occurs.
func (s *Service) Update(order *models.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check order id: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("order %d: %w", order.ID, ErrNotFound)
		}
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return fmt.Errorf("failed to update order header: %w", err)
		}
		return replaceLines(tx, order.ID, order.Lines)
	})
}

// ReplaceLines deletes all existing lines of the order and inserts the
// given ones. Full replace, not merge: remaining quantities are reset
// to the ordered quantities.
func (s *Service) ReplaceLines(orderID int64, lines []models.OrderLine) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return replaceLines(tx, orderID, lines)
	})
}

func replaceLines(tx *gorm.DB, orderID int64, lines []models.OrderLine) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear order lines: %w", err)
	}
	for i := range lines {
		line := lines[i]
		line.OrderID = orderID
		line.Remaining = line.Quantity
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}
	return nil
}

// Delete removes the order and its lines.
func (s *Service) Delete(orderID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderLine{}).Error; err != nil {
			return fmt.Errorf("failed to delete order lines: %w", err)
		}
		if err := tx.Delete(&models.Order{}, orderID).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

// Get loads one order with its lines.
func (s *Service) Get(orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Lines").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// List returns every order with lines, ordered by id.
func (s *Service) List() ([]models.Order, error) {
	var out []models.Order
	if err := s.db.Preload("Lines").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return out, nil
}

// Remaining returns the undelivered quantity of one order line.
func (s *Service) Remaining(orderID, productID int64) (float64, error) {
	var line models.OrderLine
	err := s.db.Where("order_id = ? AND product_id = ?", orderID, productID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("order %d product %d: %w", orderID, productID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load order line: %w", err)
	}
	return line.Remaining, nil
}

// DecreaseRemaining subtracts quantity from the matching line's
// remaining quantity. The lower bound is enforced here: the remaining
// quantity never goes negative, regardless of caller.
func (s *Service) DecreaseRemaining(orderID, productID int64, quantity float64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity %v: %w", quantity, ErrInvalidQuantity)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var line models.OrderLine
		err := tx.Where("order_id = ? AND product_id = ?", orderID, productID).First(&line).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d product %d: %w", orderID, productID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load order line: %w", err)
		}
		if quantity > line.Remaining {
			return fmt.Errorf("quantity %v exceeds remaining %v: %w", quantity, line.Remaining, ErrInvalidQuantity)
		}
		return tx.Model(&models.OrderLine{}).
			Where("order_id = ? AND product_id = ?", orderID, productID).
			Update("fennmarado_mennyiseg", line.Remaining-quantity).Error
	})
}

// ListOpenLines returns every line across all orders with remaining
// quantity > 0, with the order header attached.
func (s *Service) ListOpenLines() ([]OpenLine, error) {
	var lines []models.OrderLine
	if err := s.db.Where("fennmarado_mennyiseg > 0").Order("order_id, product_id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list open lines: %w", err)
	}

	headers := map[int64]models.Order{}
	out := make([]OpenLine, 0, len(lines))
	for _, line := range lines {
		header, ok := headers[line.OrderID]
		if !ok {
			// missing header rows degrade to an empty header
			_ = s.db.First(&header, line.OrderID).Error
			headers[line.OrderID] = header
		}
		out = append(out, OpenLine{Order: header, Line: line})
	}
	return out, nil
}
