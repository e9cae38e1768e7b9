package overview

import (
	"errors"
	"fmt"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the primary row of a view is missing.
// Missing counterpart rows in other stores never fail a view; their
// fields stay zero-valued.
var ErrNotFound = errors.New("not found")

// Service is the read-side join layer. The four stores are independent
// files, so every cross-store join happens here in application code; no
// writes, no locks across stores.
type Service struct {
	products   *database.Store
	orders     *database.Store
	deliveries *database.Store
	production *database.Store
}

// NewService creates a new overview service
func NewService(products, orders, deliveries, production *database.Store) *Service {
	return &Service{products: products, orders: orders, deliveries: deliveries, production: production}
}

// OpenLine is one undelivered order line denormalized for display:
// order header, product attributes and the reconstructed ordered
// quantity (remaining + already delivered).
type OpenLine struct {
	OrderID             int64
	OrderNumber         string
	CustomerName        string
	CustomerAddress     string
	CustomerTaxNumber   string
	CustomerEUTaxNumber string
	CustomerCountry     string
	ShippingName        string
	ShippingAddress     string
	ShippingCountry     string
	ReceivedAt          string
	DueDate             string

	ProductID   int64
	ProductName string
	ItemNumber  string
	Plant       string
	Surface     string

	OrderedQty   float64
	RemainingQty float64
	Unit         string
}

// OpenLines lists every order line with remaining quantity > 0, joined
// with product attributes and the delivered total per order/product.
// This is the dataset the delivery recorder and the document components
// consume.
func (s *Service) OpenLines() ([]OpenLine, error) {
	var lines []models.OrderLine
	if err := s.orders.Where("fennmarado_mennyiseg > 0").Order("order_id, product_id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list open lines: %w", err)
	}

	out := make([]OpenLine, 0, len(lines))
	for _, line := range lines {
		var header models.Order
		_ = s.orders.First(&header, line.OrderID).Error // tolerate a missing header

		product := s.lookupProduct(line.ProductID)

		delivered, err := s.deliveredQty(line.OrderID, line.ProductID)
		if err != nil {
			return nil, err
		}

		out = append(out, OpenLine{
			OrderID:             line.OrderID,
			OrderNumber:         header.OrderNumber,
			CustomerName:        header.CustomerName,
			CustomerAddress:     header.CustomerAddress,
			CustomerTaxNumber:   header.CustomerTaxNumber,
			CustomerEUTaxNumber: product.CustomerEUTaxNumber,
			CustomerCountry:     product.CustomerCountry,
			ShippingName:        header.ShippingName,
			ShippingAddress:     header.ShippingAddress,
			ShippingCountry:     product.ShippingCountry,
			ReceivedAt:          header.ReceivedAt,
			DueDate:             header.DueDate,
			ProductID:           line.ProductID,
			ProductName:         product.Name,
			ItemNumber:          product.ItemNumber,
			Plant:               product.PlantChain,
			Surface:             product.Surface,
			OrderedQty:          line.Remaining + delivered,
			RemainingQty:        line.Remaining,
			Unit:                line.Unit,
		})
	}
	return out, nil
}

// OrderLineDetail assembles the header+line+product view of a single
// order line, used when preparing a delivery document.
func (s *Service) OrderLineDetail(orderID, productID int64) (*OpenLine, error) {
	var line models.OrderLine
	err := s.orders.Where("order_id = ? AND product_id = ?", orderID, productID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d product %d: %w", orderID, productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order line: %w", err)
	}

	var header models.Order
	_ = s.orders.First(&header, orderID).Error
	product := s.lookupProduct(productID)

	return &OpenLine{
		OrderID:             orderID,
		OrderNumber:         header.OrderNumber,
		CustomerName:        header.CustomerName,
		CustomerAddress:     header.CustomerAddress,
		CustomerTaxNumber:   header.CustomerTaxNumber,
		CustomerEUTaxNumber: product.CustomerEUTaxNumber,
		CustomerCountry:     product.CustomerCountry,
		ShippingName:        header.ShippingName,
		ShippingAddress:     header.ShippingAddress,
		ShippingCountry:     product.ShippingCountry,
		ReceivedAt:          header.ReceivedAt,
		DueDate:             header.DueDate,
		ProductID:           productID,
		ProductName:         product.Name,
		ItemNumber:          product.ItemNumber,
		Plant:               product.PlantChain,
		Surface:             product.Surface,
		OrderedQty:          line.Quantity,
		RemainingQty:        line.Remaining,
		Unit:                line.Unit,
	}, nil
}

// NoteLine is one delivery line joined with product attributes.
type NoteLine struct {
	ProductID   int64
	ProductName string
	ItemNumber  string
	Quantity    float64
	Unit        string
	UnitWeight  float64
}

// NoteView is a delivery note denormalized for rendering.
type NoteView struct {
	Note      models.DeliveryNote
	Lines     []NoteLine
	NetWeight float64 // Σ quantity × unit weight
}

// Note assembles the display view of one delivery note.
func (s *Service) Note(noteID int64) (*NoteView, error) {
	var note models.DeliveryNote
	err := s.deliveries.Preload("Lines").First(&note, noteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("delivery note %d: %w", noteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery note: %w", err)
	}

	view := &NoteView{Note: note}
	for _, line := range note.Lines {
		product := s.lookupProduct(line.ProductID)
		view.Lines = append(view.Lines, NoteLine{
			ProductID:   line.ProductID,
			ProductName: product.Name,
			ItemNumber:  product.ItemNumber,
			Quantity:    line.Quantity,
			Unit:        product.Unit,
			UnitWeight:  product.Weight,
		})
		view.NetWeight += line.Quantity * product.Weight
	}
	return view, nil
}

// StockRow is the per-product stock figure for the overview screen.
type StockRow struct {
	ProductID   int64
	Customer    string
	ProductName string
	ItemNumber  string
	Stock       float64
}

// StockRows computes good − scrap − delivered for every product that
// appears in the production or delivery stores, plus every cataloged
// product. Products missing from the catalog show with empty labels.
func (s *Service) StockRows() ([]StockRow, error) {
	type produced struct {
		ProductID int64
		Good      float64
		Scrap     float64
	}
	var production []produced
	err := s.production.Model(&models.ShiftLog{}).
		Select("product_id, COALESCE(SUM(good_qty), 0) AS good, COALESCE(SUM(scrap_qty), 0) AS scrap").
		Group("product_id").Scan(&production).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum production: %w", err)
	}

	type shipped struct {
		ProductID int64
		Qty       float64
	}
	var deliveries []shipped
	err = s.deliveries.Model(&models.DeliveryLine{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS qty").
		Group("product_id").Scan(&deliveries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum deliveries: %w", err)
	}

	stock := map[int64]float64{}
	for _, row := range production {
		stock[row.ProductID] += row.Good - row.Scrap
	}
	for _, row := range deliveries {
		stock[row.ProductID] -= row.Qty
	}

	var products []models.Product
	if err := s.products.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	seen := map[int64]bool{}
	out := make([]StockRow, 0, len(products))
	for _, product := range products {
		seen[product.ID] = true
		out = append(out, StockRow{
			ProductID:   product.ID,
			Customer:    product.Customer,
			ProductName: product.Name,
			ItemNumber:  product.ItemNumber,
			Stock:       stock[product.ID],
		})
	}
	for id, qty := range stock {
		if !seen[id] {
			out = append(out, StockRow{ProductID: id, Stock: qty})
		}
	}
	return out, nil
}

// lookupProduct loads a product or returns an empty one when the
// reference dangles.
func (s *Service) lookupProduct(productID int64) models.Product {
	var product models.Product
	if err := s.products.First(&product, productID).Error; err != nil {
		return models.Product{}
	}
	return product
}

func (s *Service) deliveredQty(orderID, productID int64) (float64, error) {
	var total float64
	err := s.deliveries.Model(&models.DeliveryLine{}).
		Joins("JOIN delivery_notes ON delivery_notes.id = delivery_note_items.delivery_note_id").
		Where("delivery_notes.order_id = ? AND delivery_note_items.product_id = ?", orderID, productID).
		Select("COALESCE(SUM(delivery_note_items.quantity), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum delivered quantity: %w", err)
	}
	return total, nil
}
