package production

import (
	"errors"
	"fmt"
	"time"

	"github.com/drkocher/foundryerp/internal/config"
	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a referenced row does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity is returned for negative or inconsistent counts
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidShift is returned for an unknown shift label
	ErrInvalidShift = errors.New("invalid shift label")
	// ErrNoActiveJob is returned when a machine has no product assigned
	ErrNoActiveJob = errors.New("no active job on machine")
	// ErrMachineBusy is returned when starting over a different active job without force
	ErrMachineBusy = errors.New("machine already runs another job")
)

// Performance classification labels
const (
	PerfGood    = "good"
	PerfWarning = "warning"
	PerfPoor    = "poor"
)

// Service is the production and stock ledger: shift logs, downtimes,
// machine-job assignments, norms, tooling and the derived stock figure.
// It reads the products store for cavity counts and the deliveries
// store for shipped quantities; it writes only the production store.
type Service struct {
	db         *database.Store
	products   *database.Store
	deliveries *database.Store
	shift      config.ShiftConfig
}

// NewService creates a new production ledger
func NewService(db, products, deliveries *database.Store, shift config.ShiftConfig) *Service {
	return &Service{db: db, products: products, deliveries: deliveries, shift: shift}
}

// StartJob assigns a product to a machine. Starting over an active job
// with a different product is rejected unless force is set; restarting
// the same product just refreshes the assignment.
func (s *Service) StartJob(machine string, productID int64, force bool) error {
	if !force {
		current, active, err := s.ActiveJobProduct(machine)
		if err != nil {
			return err
		}
		if active && current != productID {
			return fmt.Errorf("machine %s runs product %d: %w", machine, current, ErrMachineBusy)
		}
	}

	job := models.MachineJob{
		Machine:   machine,
		ProductID: productID,
		StartAt:   time.Now().Format(time.DateTime),
		Status:    models.JobStatusActive,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "machine"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_id", "start_at", "status"}),
	}).Create(&job).Error
	if err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	return nil
}

// StopJob marks the machine's job stopped. Stopping an idle machine is
// a no-op.
func (s *Service) StopJob(machine string) error {
	err := s.db.Model(&models.MachineJob{}).
		Where("machine = ?", machine).
		Update("status", models.JobStatusStopped).Error
	if err != nil {
		return fmt.Errorf("failed to stop job: %w", err)
	}
	return nil
}

// HasActiveJob reports whether the machine has an active job.
func (s *Service) HasActiveJob(machine string) (bool, error) {
	_, active, err := s.ActiveJobProduct(machine)
	return active, err
}

// ActiveJobProduct returns the product currently assigned to the
// machine; the boolean is false when the machine is idle.
func (s *Service) ActiveJobProduct(machine string) (int64, bool, error) {
	var job models.MachineJob
	err := s.db.Where("machine = ? AND status = ?", machine, models.JobStatusActive).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load machine job: %w", err)
	}
	return job.ProductID, true, nil
}

// RecordShift appends one production event for the machine's active
// job. Good and scrap quantities are derived here:
//
//	good  = (shots - scrapShots) * cavity
//	scrap = scrapShots * cavity
//
// with the product's cavity count (1 when the product is unknown or
// has no cavity count set). The cavity used is captured on the row.
func (s *Service) RecordShift(machine, operator string, day time.Time, shiftLabel string, shots, scrapShots int) (int64, error) {
	if !models.ValidShiftLabel(shiftLabel) {
		return 0, fmt.Errorf("shift %q: %w", shiftLabel, ErrInvalidShift)
	}
	if shots < 0 || scrapShots < 0 || scrapShots > shots {
		return 0, fmt.Errorf("shots=%d scrap=%d: %w", shots, scrapShots, ErrInvalidQuantity)
	}

	productID, active, err := s.ActiveJobProduct(machine)
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, fmt.Errorf("machine %s: %w", machine, ErrNoActiveJob)
	}

	cavity := s.cavityCount(productID)
	date := day.Format(time.DateOnly)
	row := models.ShiftLog{
		Machine:     machine,
		ProductID:   productID,
		Operator:    operator,
		StartTime:   date + " 00:00:00",
		EndTime:     date + " 23:59:59",
		Date:        date,
		ShiftType:   shiftLabel,
		Shots:       shots,
		ScrapShots:  scrapShots,
		GoodQty:     float64((shots - scrapShots) * cavity),
		ScrapQty:    float64(scrapShots * cavity),
		CavityCount: cavity,
		CreatedAt:   time.Now().Format(time.DateTime),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert shift log: %w", err)
	}
	return row.ID, nil
}

// UpdateShiftCounts corrects the shot counts of an existing log row and
// recomputes the derived quantities with the cavity count captured at
// insert time (legacy rows without one fall back to the product).
func (s *Service) UpdateShiftCounts(logID int64, shots, scrapShots int) error {
	if shots < 0 || scrapShots < 0 || scrapShots > shots {
		return fmt.Errorf("shots=%d scrap=%d: %w", shots, scrapShots, ErrInvalidQuantity)
	}
	var row models.ShiftLog
	err := s.db.First(&row, logID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("shift log %d: %w", logID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load shift log: %w", err)
	}

	cavity := row.CavityCount
	if cavity <= 0 {
		cavity = s.cavityCount(row.ProductID)
	}
	return s.db.Model(&models.ShiftLog{}).Where("id = ?", logID).Updates(map[string]interface{}{
		"shots":        shots,
		"scrap_shots":  scrapShots,
		"good_qty":     float64((shots - scrapShots) * cavity),
		"scrap_qty":    float64(scrapShots * cavity),
		"cavity_count": cavity,
	}).Error
}

// ListShiftLogs returns shift logs, newest date first. An empty machine
// filter returns all machines.
func (s *Service) ListShiftLogs(machine string) ([]models.ShiftLog, error) {
	query := s.db.Order("date DESC, id DESC")
	if machine != "" {
		query = query.Where("machine = ?", machine)
	}
	var logs []models.ShiftLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list shift logs: %w", err)
	}
	return logs, nil
}

func (s *Service) cavityCount(productID int64) int {
	var product models.Product
	if err := s.products.First(&product, productID).Error; err != nil {
		return 1
	}
	return product.Cavity()
}

// AddDowntime records non-productive hours for a machine/date/shift.
func (s *Service) AddDowntime(machine string, day time.Time, shiftLabel, cause string, hours float64) (int64, error) {
	if !models.ValidShiftLabel(shiftLabel) {
		return 0, fmt.Errorf("shift %q: %w", shiftLabel, ErrInvalidShift)
	}
	if hours <= 0 {
		return 0, fmt.Errorf("hours %v: %w", hours, ErrInvalidQuantity)
	}
	row := models.DowntimeEntry{
		Machine:   machine,
		Date:      day.Format(time.DateOnly),
		ShiftType: shiftLabel,
		Cause:     cause,
		Hours:     hours,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert downtime: %w", err)
	}
	return row.ID, nil
}

// ShiftDowntime sums the downtime hours of one machine/date/shift.
func (s *Service) ShiftDowntime(machine string, day time.Time, shiftLabel string) (float64, error) {
	var total float64
	err := s.db.Model(&models.DowntimeEntry{}).
		Where("machine = ? AND date = ? AND shift_type = ?", machine, day.Format(time.DateOnly), shiftLabel).
		Select("COALESCE(SUM(hours), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum downtime: %w", err)
	}
	return total, nil
}

// SetNorm upserts the target shots-per-shift of a product.
func (s *Service) SetNorm(productID int64, norm int) error {
	row := models.ProductNorm{
		ProductID: productID,
		Norm:      norm,
		UpdatedAt: time.Now().Format(time.DateTime),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"norm", "updated_at"}),
	}).Create(&row).Error
}

// Norm returns the target shots-per-shift of a product, 0 when unset.
func (s *Service) Norm(productID int64) (int, error) {
	var row models.ProductNorm
	err := s.db.First(&row, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load norm: %w", err)
	}
	return row.Norm, nil
}

// SetTooling upserts the tooling identifier of a product.
func (s *Service) SetTooling(productID int64, tooling string) error {
	row := models.ProductTooling{
		ProductID: productID,
		Tooling:   tooling,
		UpdatedAt: time.Now().Format(time.DateTime),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tooling", "updated_at"}),
	}).Create(&row).Error
}

// Tooling returns the tooling identifier of a product, "" when unset.
func (s *Service) Tooling(productID int64) (string, error) {
	var row models.ProductTooling
	err := s.db.First(&row, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load tooling: %w", err)
	}
	return row.Tooling, nil
}

// AddOperator adds a name to the operator roster; duplicates are ignored.
func (s *Service) AddOperator(name string) error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Operator{Name: name}).Error
}

// ListOperators returns the roster sorted by name.
func (s *Service) ListOperators() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.Operator{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return names, nil
}

// CurrentStock computes the on-hand stock of a product, fresh on every
// call:
//
//	stock = Σ good_qty - Σ scrap_qty - Σ delivered quantity
//
// over all shift logs and delivery lines of the product.
func (s *Service) CurrentStock(productID int64) (float64, error) {
	type sums struct {
		Good  float64
		Scrap float64
	}
	var produced sums
	err := s.db.Model(&models.ShiftLog{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(good_qty), 0) AS good, COALESCE(SUM(scrap_qty), 0) AS scrap").
		Scan(&produced).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum production: %w", err)
	}

	var delivered float64
	err = s.deliveries.Model(&models.DeliveryLine{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&delivered).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum deliveries: %w", err)
	}

	return produced.Good - produced.Scrap - delivered, nil
}

// PerformancePercent computes the downtime-adjusted performance ratio
// of one machine/date/shift for a product:
//
//	effective = max(0, shiftLength - downtime)
//	adjusted  = norm * effective / shiftLength
//	ratio     = shots * cavity / adjusted   (0 when adjusted is 0)
func (s *Service) PerformancePercent(productID int64, machine string, day time.Time, shiftLabel string) (float64, error) {
	norm, err := s.Norm(productID)
	if err != nil {
		return 0, err
	}

	var logs []models.ShiftLog
	err = s.db.Where("product_id = ? AND machine = ? AND date = ? AND shift_type = ?",
		productID, machine, day.Format(time.DateOnly), shiftLabel).Find(&logs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load shift logs: %w", err)
	}

	pieces := 0.0
	for _, row := range logs {
		cavity := row.CavityCount
		if cavity <= 0 {
			cavity = s.cavityCount(row.ProductID)
		}
		pieces += float64(row.Shots * cavity)
	}

	downtime, err := s.ShiftDowntime(machine, day, shiftLabel)
	if err != nil {
		return 0, err
	}

	adjusted := float64(norm)
	if s.shift.LengthHours > 0 {
		effective := s.shift.LengthHours - downtime
		if effective < 0 {
			effective = 0
		}
		adjusted = float64(norm) * effective / s.shift.LengthHours
	}
	if adjusted <= 0 {
		return 0, nil
	}
	return pieces / adjusted, nil
}

// Classify maps a performance ratio onto the display buckets. The
// thresholds are configuration, not business rules.
func (s *Service) Classify(ratio float64) string {
	switch {
	case ratio >= s.shift.GoodThreshold:
		return PerfGood
	case ratio >= s.shift.WarnThreshold:
		return PerfWarning
	default:
		return PerfPoor
	}
}
