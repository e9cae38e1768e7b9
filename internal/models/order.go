package models

// Order mirrors the legacy 'orders' table. IDs are externally assigned
// (max existing id + 1 when unset); the document number is free text.
type Order struct {
	ID                int64  `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	CustomerName      string `gorm:"column:vevo_nev" json:"customer_name"`
	CustomerAddress   string `gorm:"column:vevo_cim" json:"customer_address"`
	CustomerTaxNumber string `gorm:"column:vevo_adoszam" json:"customer_tax_number"`
	ShippingName      string `gorm:"column:szallitasi_nev" json:"shipping_name"`
	ShippingAddress   string `gorm:"column:szallitasi_cim" json:"shipping_address"`
	ReceivedAt        string `gorm:"column:beerkezes" json:"received_at"` // ISO date
	OrderNumber       string `gorm:"column:megrendeles_szam" json:"order_number"`
	DueDate           string `gorm:"column:szall_hatarido" json:"due_date"` // ISO date
	Note              string `gorm:"column:megjegyzes" json:"note"`

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderLine mirrors 'order_items'. Remaining tracks the undelivered part
// of the ordered quantity; 0 <= Remaining <= Quantity at all times.
type OrderLine struct {
	OrderID   int64   `gorm:"primaryKey;autoIncrement:false;column:order_id" json:"order_id"`
	ProductID int64   `gorm:"primaryKey;autoIncrement:false;column:product_id" json:"product_id"`
	Quantity  float64 `gorm:"column:qty" json:"quantity"`
	Remaining float64 `gorm:"column:fennmarado_mennyiseg" json:"remaining"`
	Unit      string  `gorm:"column:mennyisegi_egyseg" json:"unit"`
}

func (OrderLine) TableName() string { return "order_items" }
