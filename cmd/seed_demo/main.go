package main

import (
	"fmt"
	"log"
	"time"

	"github.com/drkocher/foundryerp/internal/auth"
	"github.com/drkocher/foundryerp/internal/config"
	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"github.com/drkocher/foundryerp/internal/services/catalog"
	"github.com/drkocher/foundryerp/internal/services/delivery"
	"github.com/drkocher/foundryerp/internal/services/orders"
	"github.com/drkocher/foundryerp/internal/services/pricing"
	"github.com/drkocher/foundryerp/internal/services/production"
	"github.com/shopspring/decimal"
)

func main() {
	fmt.Println("🌱 Foundry ERP Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	stores, err := database.OpenAll(cfg.Stores)
	if err != nil {
		log.Fatalf("❌ Failed to open stores: %v", err)
	}
	defer stores.Close()
	fmt.Println("✅ Stores opened")

	var productCount int64
	stores.Products.Model(&models.Product{}).Count(&productCount)
	if productCount > 0 {
		fmt.Printf("⚠️  Products store already has %d products. Seed anyway? (y/N): ", productCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Stores not modified.")
			return
		}
	}

	catalogSvc := catalog.NewService(stores.Products)
	pricingSvc := pricing.NewService(stores.Products)
	orderLedger := orders.NewService(stores.Orders)
	recorder := delivery.NewService(stores.Deliveries, orderLedger, cfg.Doc.NotePrefix)
	productionSvc := production.NewService(stores.Production, stores.Products, stores.Deliveries, cfg.Shift)
	authSvc := auth.NewService(stores.Products)

	fmt.Println("📦 Creating demo data...")

	// 1. Product with price history
	product := &models.Product{
		ID:          101,
		Customer:    "Muster GmbH",
		Name:        "Öntvény ház A",
		ItemNumber:  "DRK-1001",
		Unit:        "db",
		Surface:     "szemcseszórt",
		Weight:      0.85,
		WeightUnit:  "kg",
		CavityCount: 4,

		CustomerName:    "Muster GmbH",
		CustomerAddress: "Musterstraße 1, 70173 Stuttgart",
		CustomerCountry: "DE",
		ShippingName:    "Muster GmbH Werk 2",
		ShippingAddress: "Werkstraße 8, 70190 Stuttgart",
		ShippingCountry: "DE",
	}
	product.SetRawMaterialList([]string{"AlSi9Cu3"})
	product.SetPlantChainList([]string{"öntés", "sorjázás", "szemcseszórás"})
	if err := catalogSvc.Create(product); err != nil {
		log.Fatalf("❌ Failed to seed product: %v", err)
	}
	start := time.Now().AddDate(0, -6, 0)
	if err := pricingSvc.SetNewPrice(product.ID, decimal.NewFromFloat(2.40), "EUR", start); err != nil {
		log.Fatalf("❌ Failed to seed price: %v", err)
	}
	if err := pricingSvc.SetNewPrice(product.ID, decimal.NewFromFloat(2.65), "EUR", time.Now().AddDate(0, -1, 0)); err != nil {
		log.Fatalf("❌ Failed to seed price change: %v", err)
	}
	fmt.Println("  ✅ Product 101 with price history")

	// 2. Order with one line
	orderID, err := orderLedger.Create(&models.Order{
		CustomerName:    product.CustomerName,
		CustomerAddress: product.CustomerAddress,
		ShippingName:    product.ShippingName,
		ShippingAddress: product.ShippingAddress,
		ReceivedAt:      time.Now().AddDate(0, 0, -14).Format(time.DateOnly),
		OrderNumber:     "PO-2024-117",
		DueDate:         time.Now().AddDate(0, 1, 0).Format(time.DateOnly),
		Lines: []models.OrderLine{
			{ProductID: product.ID, Quantity: 500, Unit: "db"},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to seed order: %v", err)
	}
	fmt.Printf("  ✅ Order %d\n", orderID)

	// 3. Production: job, norm, operator, two shifts, one downtime
	if err := productionSvc.StartJob("G1", product.ID, false); err != nil {
		log.Fatalf("❌ Failed to start job: %v", err)
	}
	if err := productionSvc.SetNorm(product.ID, 100); err != nil {
		log.Fatalf("❌ Failed to set norm: %v", err)
	}
	if err := productionSvc.SetTooling(product.ID, "SZ-17"); err != nil {
		log.Fatalf("❌ Failed to set tooling: %v", err)
	}
	if err := productionSvc.AddOperator("Demo Operátor"); err != nil {
		log.Fatalf("❌ Failed to add operator: %v", err)
	}
	today := time.Now()
	if _, err := productionSvc.RecordShift("G1", "Demo Operátor", today, models.ShiftMorning, 90, 3); err != nil {
		log.Fatalf("❌ Failed to record shift: %v", err)
	}
	if _, err := productionSvc.RecordShift("G1", "Demo Operátor", today, models.ShiftAfternoon, 85, 2); err != nil {
		log.Fatalf("❌ Failed to record shift: %v", err)
	}
	if _, err := productionSvc.AddDowntime("G1", today, models.ShiftAfternoon, "szerszámhiba", 1.5); err != nil {
		log.Fatalf("❌ Failed to record downtime: %v", err)
	}
	fmt.Println("  ✅ Production data for machine G1")

	// 4. Delivery of part of the order
	noteNumber, err := recorder.NextNoteNumber(today)
	if err != nil {
		log.Fatalf("❌ Failed to compute note number: %v", err)
	}
	_, err = recorder.Record(&models.DeliveryNote{
		OrderID:         orderID,
		NoteNumber:      noteNumber,
		CustomerName:    product.CustomerName,
		CustomerAddress: product.CustomerAddress,
		CustomerCountry: product.CustomerCountry,
		ShippingName:    product.ShippingName,
		ShippingAddress: product.ShippingAddress,
		ShippingCountry: product.ShippingCountry,
	}, []delivery.LineInput{{ProductID: product.ID, Quantity: 120}})
	if err != nil {
		log.Fatalf("❌ Failed to record delivery: %v", err)
	}
	fmt.Printf("  ✅ Delivery note %s\n", noteNumber)

	// 5. Demo login
	if _, err := authSvc.CreateUser("demo", "Demo Felhasználó", "demo"); err != nil {
		log.Printf("⚠️  Demo user not created: %v", err)
	}

	fmt.Println("🎉 Demo data ready")
}
