package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product mirrors the legacy 'products' table of the products store.
// Column names are kept so existing data files stay readable.
type Product struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	Customer   string `gorm:"column:vevo_nev;index" json:"customer"` // customer display label
	Name       string `gorm:"column:megnevezes;index" json:"name"`
	ItemNumber string `gorm:"column:cikkszam;index" json:"item_number"` // SKU
	Unit       string `gorm:"column:mennyisegi_egyseg" json:"unit"`
	Surface    string `gorm:"column:felulet" json:"surface"`

	// Comma-joined lists, the format the legacy files use
	RawMaterials string `gorm:"column:alapanyagok" json:"raw_materials"`
	PlantChain   string `gorm:"column:uzem_lanc" json:"plant_chain"` // ordered process stages

	Weight            float64 `gorm:"column:suly" json:"weight"` // per piece
	WeightUnit        string  `gorm:"column:suly_mertekegyseg" json:"weight_unit"`
	CavityCount       int     `gorm:"column:feszekszam" json:"cavity_count"` // pieces per shot
	ClusterWeight     float64 `gorm:"column:csokosuly" json:"cluster_weight"`
	ClusterWeightUnit string  `gorm:"column:csokosuly_mertekegyseg" json:"cluster_weight_unit"`
	PhotoPath         string  `gorm:"column:foto" json:"photo_path"`

	// Customer/shipping snapshot copied onto documents
	CustomerName        string `gorm:"column:customer_name" json:"customer_name"`
	CustomerAddress     string `gorm:"column:customer_address" json:"customer_address"`
	CustomerTaxNumber   string `gorm:"column:customer_tax_number" json:"customer_tax_number"`
	CustomerEUTaxNumber string `gorm:"column:customer_eu_tax_number" json:"customer_eu_tax_number"`
	CustomerCountry     string `gorm:"column:customer_country" json:"customer_country"`
	ShippingName        string `gorm:"column:shipping_name" json:"shipping_name"`
	ShippingAddress     string `gorm:"column:shipping_address" json:"shipping_address"`
	ShippingCountry     string `gorm:"column:shipping_country" json:"shipping_country"`

	Prices []PriceInterval `gorm:"foreignKey:ProductID" json:"prices,omitempty"`
}

func (Product) TableName() string { return "products" }

// Cavity returns the cavity count with the unknown-value fallback of 1.
func (p *Product) Cavity() int {
	if p == nil || p.CavityCount <= 0 {
		return 1
	}
	return p.CavityCount
}

// RawMaterialList splits the stored raw-material column into its entries.
func (p *Product) RawMaterialList() []string { return splitList(p.RawMaterials) }

// PlantChainList splits the stored process-chain column into its stages.
func (p *Product) PlantChainList() []string { return splitList(p.PlantChain) }

// SetRawMaterialList stores the list in the legacy comma-joined format.
func (p *Product) SetRawMaterialList(items []string) { p.RawMaterials = joinList(items) }

// SetPlantChainList stores the list in the legacy comma-joined format.
func (p *Product) SetPlantChainList(items []string) { p.PlantChain = joinList(items) }

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func joinList(items []string) string { return strings.Join(items, ",") }

// PriceInterval mirrors the legacy 'arak' table. Dates are ISO
// (YYYY-MM-DD) strings; a nil End means the price is open-ended.
type PriceInterval struct {
	ID        int64           `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ProductID int64           `gorm:"column:product_id;index" json:"product_id"`
	Amount    decimal.Decimal `gorm:"column:ar" json:"amount"`
	Currency  string          `gorm:"column:valuta" json:"currency"`
	Start     string          `gorm:"column:kezdet" json:"start"`
	End       *string         `gorm:"column:veg" json:"end,omitempty"`
}

func (PriceInterval) TableName() string { return "arak" }
