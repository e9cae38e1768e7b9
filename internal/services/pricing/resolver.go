package pricing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced product does not exist.
var ErrNotFound = errors.New("product not found")

// Price is a resolved price: amount plus currency.
type Price struct {
	Amount   decimal.Decimal
	Currency string
}

// Resolve returns the price active on asOf, given a product's price
// intervals. Interval dates are ISO (YYYY-MM-DD) strings; a nil end
// means open-ended. When intervals overlap (a data inconsistency), the
// one with the latest start date wins: the scan is sorted by start date
// descending and short-circuits on the first containing interval. The
// result is independent of the input order.
func Resolve(intervals []models.PriceInterval, asOf time.Time) (Price, bool) {
	day := asOf.Format(time.DateOnly)

	sorted := make([]models.PriceInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	for _, iv := range sorted {
		if day < iv.Start {
			continue
		}
		if iv.End != nil && day > *iv.End {
			continue
		}
		return Price{Amount: iv.Amount, Currency: iv.Currency}, true
	}
	return Price{}, false
}

// Service resolves and maintains price histories in the products store.
type Service struct {
	db *database.Store
}

// NewService creates a new pricing service
func NewService(db *database.Store) *Service {
	return &Service{db: db}
}

// CurrentPrice resolves the price of a product on asOf. The boolean is
// false when no interval covers the date; callers treat that as "no
// price available", not as a failure.
func (s *Service) CurrentPrice(productID int64, asOf time.Time) (Price, bool, error) {
	intervals, err := s.intervals(productID)
	if err != nil {
		return Price{}, false, err
	}
	price, ok := Resolve(intervals, asOf)
	return price, ok, nil
}

// SetNewPrice closes the interval covering effectiveFrom (its end is
// truncated to the previous day) and appends a new open-ended interval.
// The product's price rows are rewritten wholesale (delete then
// reinsert), matching the replace-collection contract of the store.
func (s *Service) SetNewPrice(productID int64, amount decimal.Decimal, currency string, effectiveFrom time.Time) error {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	intervals, err := s.intervals(productID)
	if err != nil {
		return err
	}

	from := effectiveFrom.Format(time.DateOnly)
	for i := range intervals {
		iv := &intervals[i]
		if from < iv.Start {
			continue
		}
		if iv.End != nil && from > *iv.End {
			continue
		}
		closed := effectiveFrom.AddDate(0, 0, -1).Format(time.DateOnly)
		iv.End = &closed
		break
	}

	intervals = append(intervals, models.PriceInterval{
		ProductID: productID,
		Amount:    amount,
		Currency:  currency,
		Start:     from,
	})
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})

	return s.ReplaceIntervals(productID, intervals)
}

// ReplaceIntervals rewrites the full price history of a product.
// Full replace, not merge.
func (s *Service) ReplaceIntervals(productID int64, intervals []models.PriceInterval) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.PriceInterval{}).Error; err != nil {
			return fmt.Errorf("failed to clear price history: %w", err)
		}
		for i := range intervals {
			row := intervals[i]
			row.ID = 0
			row.ProductID = productID
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert price interval: %w", err)
			}
		}
		return nil
	})
}

func (s *Service) intervals(productID int64) ([]models.PriceInterval, error) {
	var intervals []models.PriceInterval
	if err := s.db.Where("product_id = ?", productID).Order("kezdet").Find(&intervals).Error; err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	return intervals, nil
}
