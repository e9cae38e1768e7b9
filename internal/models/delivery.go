package models

// Delivery note status constants. A note is written as pending first,
// flips to committed once every line has been allocated against its
// order; startup reconciliation rolls pending notes forward.
const (
	NoteStatusPending   = "pending"
	NoteStatusCommitted = "committed"
)

// DeliveryNote mirrors the legacy 'delivery_notes' table. The customer
// and shipping fields are snapshots copied at creation time, not live
// joins against the products store.
type DeliveryNote struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	OrderID    int64  `gorm:"column:order_id;index;not null;default:0" json:"order_id"`
	NoteNumber string `gorm:"column:note_number;uniqueIndex" json:"note_number"` // PREFIX-YYYYMMDD-NNN
	CreatedAt  string `gorm:"column:created_at;not null;default:''" json:"created_at"`
	Status     string `gorm:"column:status;index;not null;default:pending" json:"status"`

	CustomerName        string `gorm:"column:customer_name" json:"customer_name"`
	CustomerAddress     string `gorm:"column:customer_address" json:"customer_address"`
	CustomerTaxNumber   string `gorm:"column:customer_tax_number" json:"customer_tax_number"`
	CustomerEUTaxNumber string `gorm:"column:customer_eu_tax_number" json:"customer_eu_tax_number"`
	CustomerCountry     string `gorm:"column:customer_country" json:"customer_country"`
	ShippingName        string `gorm:"column:shipping_name" json:"shipping_name"`
	ShippingAddress     string `gorm:"column:shipping_address" json:"shipping_address"`
	ShippingCountry     string `gorm:"column:shipping_country" json:"shipping_country"`

	ShippingDate string `gorm:"column:shipping_date;not null;default:''" json:"shipping_date"`

	Lines []DeliveryLine `gorm:"foreignKey:DeliveryNoteID" json:"lines,omitempty"`
}

func (DeliveryNote) TableName() string { return "delivery_notes" }

// DeliveryLine mirrors 'delivery_note_items'. Allocated marks that the
// matching order line's remaining quantity has been decremented for
// this line; it is the compensation log for the cross-store write.
type DeliveryLine struct {
	ID             int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DeliveryNoteID int64   `gorm:"column:delivery_note_id;index;not null" json:"delivery_note_id"`
	ProductID      int64   `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity       float64 `gorm:"column:quantity;not null" json:"quantity"`
	Allocated      bool    `gorm:"column:allocated;default:false" json:"allocated"`
}

func (DeliveryLine) TableName() string { return "delivery_note_items" }
