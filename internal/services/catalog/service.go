package catalog

import (
	"errors"
	"fmt"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a product id has no matching row
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateID is returned when creating a product with a taken id
	ErrDuplicateID = errors.New("duplicate product id")
)

// Service provides product CRUD over the products store.
type Service struct {
	db *database.Store
}

// NewService creates a new catalog service
func NewService(db *database.Store) *Service {
	return &Service{db: db}
}

// Create inserts a product with its price history. The id is assigned
// by the caller; a taken id is rejected.
func (s *Service) Create(product *models.Product) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product id: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("product %d: %w", product.ID, ErrDuplicateID)
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		return nil
	})
}

// Update rewrites the product header and replaces its price history
// with the rows carried on the product (full replace, not merge).
func (s *Service) Update(product *models.Product) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product id: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("product %d: %w", product.ID, ErrNotFound)
		}

		prices := product.Prices
		if err := tx.Omit("Prices").Save(product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.PriceInterval{}).Error; err != nil {
			return fmt.Errorf("failed to clear price history: %w", err)
		}
		for i := range prices {
			row := prices[i]
			row.ID = 0
			row.ProductID = product.ID
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert price interval: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a product and its price history. Orders and deliveries
// referencing the id are left untouched; the join layer substitutes
// defaults for the dangling reference.
func (s *Service) Delete(productID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.PriceInterval{}).Error; err != nil {
			return fmt.Errorf("failed to delete price history: %w", err)
		}
		if err := tx.Delete(&models.Product{}, productID).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// Get loads one product with its price history.
func (s *Service) Get(productID int64) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Prices").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}

// List returns every product with price history, ordered by id.
func (s *Service) List() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Preload("Prices").Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
