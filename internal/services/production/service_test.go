package production

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/drkocher/foundryerp/internal/config"
	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
)

func openStore(t *testing.T, dst ...interface{}) *database.Store {
	t.Helper()
	store, err := database.Open(":memory:", true)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.AutoMigrate(dst...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store
}

func newTestService(t *testing.T) (*Service, *database.Store, *database.Store) {
	t.Helper()
	productionStore := openStore(t,
		&models.ShiftLog{}, &models.DowntimeEntry{}, &models.MachineJob{},
		&models.ProductNorm{}, &models.ProductTooling{}, &models.Operator{})
	productStore := openStore(t, &models.Product{})
	deliveryStore := openStore(t, &models.DeliveryNote{}, &models.DeliveryLine{})

	shift := config.ShiftConfig{LengthHours: 8, GoodThreshold: 0.80, WarnThreshold: 0.60}
	return NewService(productionStore, productStore, deliveryStore, shift), productStore, deliveryStore
}

func seedProduct(t *testing.T, store *database.Store, id int64, cavity int) {
	t.Helper()
	product := models.Product{ID: id, Name: "Öntvény ház A", ItemNumber: "DRK-1001", CavityCount: cavity}
	if err := store.Create(&product).Error; err != nil {
		t.Fatalf("Failed to insert product: %v", err)
	}
}

func TestStartJob_Guarded(t *testing.T) {
	svc, products, _ := newTestService(t)
	seedProduct(t, products, 101, 4)

	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	// A different product over an active job needs force.
	if err := svc.StartJob("G1", 102, false); !errors.Is(err, ErrMachineBusy) {
		t.Errorf("Expected ErrMachineBusy, got %v", err)
	}
	// The same product just refreshes the assignment.
	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Errorf("Restart with the same product failed: %v", err)
	}
	// Force switches the machine over.
	if err := svc.StartJob("G1", 102, true); err != nil {
		t.Fatalf("Forced start failed: %v", err)
	}
	productID, active, err := svc.ActiveJobProduct("G1")
	if err != nil || !active || productID != 102 {
		t.Errorf("Expected active job on product 102, got id=%d active=%v err=%v", productID, active, err)
	}

	// Stopped machines accept any product without force.
	if err := svc.StopJob("G1"); err != nil {
		t.Fatalf("StopJob failed: %v", err)
	}
	if active, _ := svc.HasActiveJob("G1"); active {
		t.Error("Machine should be idle after StopJob")
	}
	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Errorf("Start on idle machine failed: %v", err)
	}
}

func TestRecordShift_DerivesQuantities(t *testing.T) {
	svc, products, _ := newTestService(t)
	seedProduct(t, products, 101, 4)
	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	logID, err := svc.RecordShift("G1", "Kiss Péter", day, models.ShiftMorning, 90, 3)
	if err != nil {
		t.Fatalf("RecordShift failed: %v", err)
	}

	logs, err := svc.ListShiftLogs("G1")
	if err != nil {
		t.Fatalf("ListShiftLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != logID {
		t.Fatalf("Expected the recorded log, got %+v", logs)
	}
	row := logs[0]
	if row.GoodQty != 348 { // (90-3)*4
		t.Errorf("Expected good 348, got %v", row.GoodQty)
	}
	if row.ScrapQty != 12 { // 3*4
		t.Errorf("Expected scrap 12, got %v", row.ScrapQty)
	}
	if row.CavityCount != 4 {
		t.Errorf("Cavity count not captured: %d", row.CavityCount)
	}
	if row.ProductID != 101 || row.Date != "2024-03-04" || row.ShiftType != models.ShiftMorning {
		t.Errorf("Row metadata wrong: %+v", row)
	}
}

func TestRecordShift_Validation(t *testing.T) {
	svc, products, _ := newTestService(t)
	seedProduct(t, products, 101, 4)
	day := time.Now()

	// No active job on the machine.
	if _, err := svc.RecordShift("G1", "Kiss Péter", day, models.ShiftMorning, 10, 0); !errors.Is(err, ErrNoActiveJob) {
		t.Errorf("Expected ErrNoActiveJob, got %v", err)
	}

	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}
	if _, err := svc.RecordShift("G1", "Kiss Péter", day, "nappali", 10, 0); !errors.Is(err, ErrInvalidShift) {
		t.Errorf("Expected ErrInvalidShift, got %v", err)
	}
	if _, err := svc.RecordShift("G1", "Kiss Péter", day, models.ShiftMorning, 10, 11); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for scrap > shots, got %v", err)
	}
	if _, err := svc.RecordShift("G1", "Kiss Péter", day, models.ShiftMorning, -1, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for negative shots, got %v", err)
	}
}

func TestUpdateShiftCounts_RecomputesWithCapturedCavity(t *testing.T) {
	svc, products, _ := newTestService(t)
	seedProduct(t, products, 101, 4)
	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}
	logID, err := svc.RecordShift("G1", "Kiss Péter", time.Now(), models.ShiftMorning, 90, 3)
	if err != nil {
		t.Fatalf("RecordShift failed: %v", err)
	}

	// A later catalog change must not affect the correction.
	if err := products.Model(&models.Product{}).Where("id = ?", 101).Update("feszekszam", 8).Error; err != nil {
		t.Fatalf("Failed to change cavity: %v", err)
	}

	if err := svc.UpdateShiftCounts(logID, 80, 5); err != nil {
		t.Fatalf("UpdateShiftCounts failed: %v", err)
	}
	logs, _ := svc.ListShiftLogs("G1")
	row := logs[0]
	if row.Shots != 80 || row.ScrapShots != 5 {
		t.Errorf("Counts not updated: %+v", row)
	}
	if row.GoodQty != 300 { // (80-5)*4, captured cavity
		t.Errorf("Expected good 300 with captured cavity 4, got %v", row.GoodQty)
	}
	if row.ScrapQty != 20 {
		t.Errorf("Expected scrap 20, got %v", row.ScrapQty)
	}

	if err := svc.UpdateShiftCounts(999, 10, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := svc.UpdateShiftCounts(logID, 10, 11); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCurrentStock_Conservation(t *testing.T) {
	svc, products, deliveries := newTestService(t)
	seedProduct(t, products, 101, 1)
	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	// Produce 100 good and 5 scrap over two shifts.
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if _, err := svc.RecordShift("G1", "Kiss Péter", day, models.ShiftMorning, 63, 3); err != nil {
		t.Fatalf("RecordShift failed: %v", err)
	}
	if _, err := svc.RecordShift("G1", "Nagy Anna", day, models.ShiftAfternoon, 42, 2); err != nil {
		t.Fatalf("RecordShift failed: %v", err)
	}

	// Ship 30.
	note := models.DeliveryNote{OrderID: 1, NoteNumber: "DRK-20240304-001", Status: models.NoteStatusCommitted}
	if err := deliveries.Create(&note).Error; err != nil {
		t.Fatalf("Failed to insert note: %v", err)
	}
	line := models.DeliveryLine{DeliveryNoteID: note.ID, ProductID: 101, Quantity: 30, Allocated: true}
	if err := deliveries.Create(&line).Error; err != nil {
		t.Fatalf("Failed to insert line: %v", err)
	}

	stock, err := svc.CurrentStock(101)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if stock != 65 { // 100 - 5 - 30
		t.Errorf("Expected stock 65, got %v", stock)
	}

	// Unknown products simply have zero stock.
	stock, err = svc.CurrentStock(999)
	if err != nil || stock != 0 {
		t.Errorf("Expected stock 0 for unknown product, got %v err=%v", stock, err)
	}
}

func TestPerformancePercent_DowntimeAdjusted(t *testing.T) {
	svc, products, _ := newTestService(t)
	seedProduct(t, products, 101, 1)
	if err := svc.StartJob("G1", 101, false); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}
	if err := svc.SetNorm(101, 100); err != nil {
		t.Fatalf("SetNorm failed: %v", err)
	}
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	if _, err := svc.RecordShift("G1", "Kiss Péter", day, models.ShiftMorning, 60, 0); err != nil {
		t.Fatalf("RecordShift failed: %v", err)
	}
	if _, err := svc.AddDowntime("G1", day, models.ShiftMorning, "szerszámhiba", 2); err != nil {
		t.Fatalf("AddDowntime failed: %v", err)
	}

	// norm 100, 2h of 8h lost: adjusted norm 75, 60 shots -> exactly 0.80.
	ratio, err := svc.PerformancePercent(101, "G1", day, models.ShiftMorning)
	if err != nil {
		t.Fatalf("PerformancePercent failed: %v", err)
	}
	if math.Abs(ratio-0.80) > 1e-9 {
		t.Errorf("Expected ratio 0.80, got %v", ratio)
	}
	if got := svc.Classify(ratio); got != PerfGood {
		t.Errorf("0.80 must classify as good (boundary inclusive), got %s", got)
	}

	// Downtime covering the whole shift yields 0, not a division error.
	if _, err := svc.AddDowntime("G1", day, models.ShiftMorning, "áramszünet", 6); err != nil {
		t.Fatalf("AddDowntime failed: %v", err)
	}
	ratio, err = svc.PerformancePercent(101, "G1", day, models.ShiftMorning)
	if err != nil {
		t.Fatalf("PerformancePercent failed: %v", err)
	}
	if ratio != 0 {
		t.Errorf("Expected ratio 0 when the shift is fully down, got %v", ratio)
	}
}

func TestClassify_Thresholds(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		ratio float64
		want  string
	}{
		{1.10, PerfGood},
		{0.80, PerfGood},
		{0.79, PerfWarning},
		{0.60, PerfWarning},
		{0.59, PerfPoor},
		{0, PerfPoor},
	}
	for _, tc := range cases {
		if got := svc.Classify(tc.ratio); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.ratio, got, tc.want)
		}
	}
}

func TestNormToolingOperators(t *testing.T) {
	svc, _, _ := newTestService(t)

	if norm, err := svc.Norm(101); err != nil || norm != 0 {
		t.Errorf("Unset norm should be 0, got %d err=%v", norm, err)
	}
	if err := svc.SetNorm(101, 100); err != nil {
		t.Fatalf("SetNorm failed: %v", err)
	}
	if err := svc.SetNorm(101, 120); err != nil {
		t.Fatalf("SetNorm upsert failed: %v", err)
	}
	if norm, _ := svc.Norm(101); norm != 120 {
		t.Errorf("Expected norm 120 after upsert, got %d", norm)
	}

	if err := svc.SetTooling(101, "SZ-17"); err != nil {
		t.Fatalf("SetTooling failed: %v", err)
	}
	if tooling, _ := svc.Tooling(101); tooling != "SZ-17" {
		t.Errorf("Expected tooling SZ-17, got %q", tooling)
	}

	for _, name := range []string{"Nagy Anna", "Kiss Péter", "Nagy Anna"} {
		if err := svc.AddOperator(name); err != nil {
			t.Fatalf("AddOperator(%s) failed: %v", name, err)
		}
	}
	names, err := svc.ListOperators()
	if err != nil {
		t.Fatalf("ListOperators failed: %v", err)
	}
	if len(names) != 2 || names[0] != "Kiss Péter" || names[1] != "Nagy Anna" {
		t.Errorf("Expected deduplicated sorted roster, got %v", names)
	}
}
