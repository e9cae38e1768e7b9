package models

// Shift labels as stored by the shift logger. The values are data in
// existing production files, so they stay in their original form.
const (
	ShiftMorning   = "délelőtt"
	ShiftAfternoon = "délután"
	ShiftNight     = "éjszaka"
)

// ShiftLabels lists the valid shift labels in display order.
var ShiftLabels = []string{ShiftMorning, ShiftAfternoon, ShiftNight}

// ValidShiftLabel reports whether label is one of the fixed shift labels.
func ValidShiftLabel(label string) bool {
	for _, l := range ShiftLabels {
		if l == label {
			return true
		}
	}
	return false
}

// DowntimeCauses lists the recordable downtime causes, as stored in
// existing files.
var DowntimeCauses = []string{
	"géphiba", "szerszámhiba", "elektromos hiba",
	"mechanikus hiba", "hidraulika hiba",
	"fémhiány hiba", "általános állás",
}

// ShiftLog mirrors the legacy 'shift_logs' table: one recorded work
// shift for a machine/product/operator/date. Good and scrap quantities
// are derived at insert time from the shot counts and the cavity count;
// the cavity count is captured on the row so later corrections can
// recompute them.
type ShiftLog struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Machine     string  `gorm:"column:machine;index;not null" json:"machine"`
	ProductID   int64   `gorm:"column:product_id;index;not null" json:"product_id"`
	Operator    string  `gorm:"column:operator;not null" json:"operator"`
	StartTime   string  `gorm:"column:start_time;not null" json:"start_time"`
	EndTime     string  `gorm:"column:end_time;not null" json:"end_time"`
	Date        string  `gorm:"column:date;index;not null;default:''" json:"date"` // ISO date
	ShiftType   string  `gorm:"column:shift_type;not null;default:''" json:"shift_type"`
	Shots       int     `gorm:"column:shots;not null;default:0" json:"shots"`
	ScrapShots  int     `gorm:"column:scrap_shots;not null;default:0" json:"scrap_shots"`
	GoodQty     float64 `gorm:"column:good_qty;not null;default:0" json:"good_qty"`
	ScrapQty    float64 `gorm:"column:scrap_qty;not null;default:0" json:"scrap_qty"`
	CavityCount int     `gorm:"column:cavity_count;default:0" json:"cavity_count"` // 0 on legacy rows
	CreatedAt   string  `gorm:"column:created_at;not null;default:''" json:"created_at"`
}

func (ShiftLog) TableName() string { return "shift_logs" }

// DowntimeEntry mirrors 'shift_downtimes': non-productive hours of a
// machine within one shift, reducing the effective norm.
type DowntimeEntry struct {
	ID        int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Machine   string  `gorm:"column:machine;not null" json:"machine"`
	Date      string  `gorm:"column:date;not null" json:"date"`
	ShiftType string  `gorm:"column:shift_type;not null" json:"shift_type"`
	Cause     string  `gorm:"column:cause;not null" json:"cause"`
	Hours     float64 `gorm:"column:hours;not null" json:"hours"`
}

func (DowntimeEntry) TableName() string { return "shift_downtimes" }

// Machine job status constants
const (
	JobStatusActive  = "active"
	JobStatusStopped = "stopped"
)

// MachineJob mirrors 'machine_jobs': the single-slot active-product
// assignment per machine.
type MachineJob struct {
	Machine   string `gorm:"primaryKey;column:machine" json:"machine"`
	ProductID int64  `gorm:"column:product_id;not null" json:"product_id"`
	StartAt   string `gorm:"column:start_at;not null" json:"start_at"`
	Status    string `gorm:"column:status;not null" json:"status"` // active | stopped
}

func (MachineJob) TableName() string { return "machine_jobs" }

// ProductNorm mirrors 'product_norms': target shots per shift.
type ProductNorm struct {
	ProductID int64  `gorm:"primaryKey;autoIncrement:false;column:product_id" json:"product_id"`
	Norm      int    `gorm:"column:norm;not null" json:"norm"`
	UpdatedAt string `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (ProductNorm) TableName() string { return "product_norms" }

// ProductTooling mirrors 'product_tooling': the tooling identifier
// assigned to a product.
type ProductTooling struct {
	ProductID int64  `gorm:"primaryKey;autoIncrement:false;column:product_id" json:"product_id"`
	Tooling   string `gorm:"column:tooling;not null" json:"tooling"`
	UpdatedAt string `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (ProductTooling) TableName() string { return "product_tooling" }

// Operator mirrors 'operators': the roster shown in the shift logger.
type Operator struct {
	Name string `gorm:"primaryKey;column:name" json:"name"`
}

func (Operator) TableName() string { return "operators" }
