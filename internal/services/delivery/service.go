package delivery

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"github.com/drkocher/foundryerp/internal/services/orders"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a delivery note does not exist
	ErrNotFound = errors.New("delivery note not found")
	// ErrInvalidQuantity is returned for zero, negative or over-remaining quantities
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrDuplicateNoteNumber is returned when the note number is already taken
	ErrDuplicateNoteNumber = errors.New("duplicate note number")
	// ErrEmptyNote is returned when a delivery has no lines
	ErrEmptyNote = errors.New("delivery note has no lines")
)

// Service records delivery notes and allocates shipped quantities
// against order balances.
//
// The deliveries store and the orders store are separate files with no
// shared transaction. The recorder therefore writes the note as pending
// first, decrements the order balance line by line (flagging each line
// allocated in the deliveries store), and only then marks the note
// committed. ReconcilePending rolls unfinished notes forward after a
// crash. The window between one order decrement and its allocation flag
// remains; everything else is recoverable.
type Service struct {
	db     *database.Store
	orders *orders.Service
	prefix string
}

// NewService creates a new delivery recorder. prefix is the
// organization tag of note numbers ("DRK" -> DRK-20240101-001).
func NewService(db *database.Store, orderLedger *orders.Service, prefix string) *Service {
	return &Service{db: db, orders: orderLedger, prefix: prefix}
}

// LineInput is one requested delivery line.
type LineInput struct {
	ProductID int64
	Quantity  float64
}

// NextNoteNumber builds the next sequential note number for the day:
// PREFIX-YYYYMMDD-NNN. The suffix is max existing suffix + 1 over all
// numbers sharing the day prefix, so gaps are skipped, never refilled.
func (s *Service) NextNoteNumber(day time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", s.prefix, day.Format("20060102"))

	var numbers []string
	err := s.db.Model(&models.DeliveryNote{}).
		Where("note_number LIKE ?", prefix+"%").
		Pluck("note_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("failed to scan note numbers: %w", err)
	}

	max := 0
	for _, number := range numbers {
		idx := strings.LastIndex(number, "-")
		if idx < 0 {
			continue
		}
		suffix, err := strconv.Atoi(number[idx+1:])
		if err != nil {
			continue
		}
		if suffix > max {
			max = suffix
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}

// Record validates and persists a delivery note, then allocates every
// line against the order ledger. The note carries the order reference,
// the note number and the customer/shipping snapshot; CreatedAt,
// ShippingDate (when empty) and Status are filled in here.
func (s *Service) Record(note *models.DeliveryNote, lines []LineInput) (int64, error) {
	if len(lines) == 0 {
		return 0, ErrEmptyNote
	}
	if note.NoteNumber == "" {
		return 0, fmt.Errorf("empty note number: %w", ErrDuplicateNoteNumber)
	}

	var count int64
	if err := s.db.Model(&models.DeliveryNote{}).Where("note_number = ?", note.NoteNumber).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to check note number: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("note number %s: %w", note.NoteNumber, ErrDuplicateNoteNumber)
	}

	// Validate against the order balance before any write. Quantities
	// are summed per product first: a note repeating a product must not
	// pass line by line while its total exceeds the balance.
	totals := map[int64]float64{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return 0, fmt.Errorf("product %d quantity %v: %w", line.ProductID, line.Quantity, ErrInvalidQuantity)
		}
		totals[line.ProductID] += line.Quantity
	}
	for productID, total := range totals {
		remaining, err := s.orders.Remaining(note.OrderID, productID)
		if err != nil {
			return 0, err
		}
		if total > remaining {
			return 0, fmt.Errorf("product %d quantity %v exceeds remaining %v: %w",
				productID, total, remaining, ErrInvalidQuantity)
		}
	}

	now := time.Now().Format(time.DateTime)
	note.CreatedAt = now
	if note.ShippingDate == "" {
		note.ShippingDate = now
	}
	note.Status = models.NoteStatusPending
	note.Lines = nil

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("failed to insert delivery note: %w", err)
		}
		for _, line := range lines {
			row := models.DeliveryLine{
				DeliveryNoteID: note.ID,
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert delivery line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.allocate(note.ID); err != nil {
		return note.ID, err
	}
	return note.ID, nil
}

// allocate decrements the order balance for every unallocated line of
// the note, then commits the note.
func (s *Service) allocate(noteID int64) error {
	var note models.DeliveryNote
	if err := s.db.Preload("Lines").First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return fmt.Errorf("failed to load delivery note: %w", err)
	}

	for _, line := range note.Lines {
		if line.Allocated {
			continue
		}
		if err := s.orders.DecreaseRemaining(note.OrderID, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("allocation of note %s product %d failed: %w", note.NoteNumber, line.ProductID, err)
		}
		if err := s.db.Model(&models.DeliveryLine{}).Where("id = ?", line.ID).
			Update("allocated", true).Error; err != nil {
			return fmt.Errorf("failed to flag allocation: %w", err)
		}
	}

	return s.db.Model(&models.DeliveryNote{}).Where("id = ?", noteID).
		Update("status", models.NoteStatusCommitted).Error
}

// ReconcilePending rolls forward delivery notes left pending by a
// crash. A pending note whose order line has since vanished is logged
// and left pending for manual review rather than dropped.
func (s *Service) ReconcilePending() error {
	var pending []models.DeliveryNote
	if err := s.db.Where("status = ?", models.NoteStatusPending).Find(&pending).Error; err != nil {
		return fmt.Errorf("failed to list pending notes: %w", err)
	}
	for _, note := range pending {
		if err := s.allocate(note.ID); err != nil {
			log.Printf("⚠️  Pending delivery note %s not reconciled: %v", note.NoteNumber, err)
			continue
		}
		log.Printf("✅ Reconciled pending delivery note %s", note.NoteNumber)
	}
	return nil
}

// Get loads one note with its lines.
func (s *Service) Get(noteID int64) (*models.DeliveryNote, error) {
	var note models.DeliveryNote
	err := s.db.Preload("Lines").First(&note, noteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery note: %w", err)
	}
	return &note, nil
}

// List returns every note, most recently shipped first. Rows without
// dates sort last, like the legacy viewer.
func (s *Service) List() ([]models.DeliveryNote, error) {
	var notes []models.DeliveryNote
	err := s.db.Preload("Lines").
		Order("CASE WHEN length(shipping_date) > 0 THEN shipping_date WHEN length(created_at) > 0 THEN created_at ELSE '1970-01-01' END DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery notes: %w", err)
	}
	return notes, nil
}

// DeliveredQuantity sums the shipped quantity of a product, optionally
// narrowed to one order (orderID > 0).
func (s *Service) DeliveredQuantity(orderID, productID int64) (float64, error) {
	query := s.db.Model(&models.DeliveryLine{}).
		Joins("JOIN delivery_notes ON delivery_notes.id = delivery_note_items.delivery_note_id").
		Where("delivery_note_items.product_id = ?", productID)
	if orderID > 0 {
		query = query.Where("delivery_notes.order_id = ?", orderID)
	}
	var total float64
	if err := query.Select("COALESCE(SUM(delivery_note_items.quantity), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum delivered quantity: %w", err)
	}
	return total, nil
}
