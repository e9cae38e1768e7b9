package main

import (
	"log"

	"github.com/drkocher/foundryerp/internal/buildinfo"
	"github.com/drkocher/foundryerp/internal/config"
	"github.com/drkocher/foundryerp/internal/database"
	"github.com/drkocher/foundryerp/internal/models"
	"github.com/drkocher/foundryerp/internal/services/delivery"
	"github.com/drkocher/foundryerp/internal/services/orders"
)

// The desktop shell links against the service packages directly; this
// entry point performs the startup work every session needs: open the
// four stores, synchronize their schemas, backfill legacy dates and
// roll forward any delivery note left pending by a crash.
func main() {
	log.Printf("Foundry ERP starting (build %s)", buildinfo.StartTime)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Open the four stores (migrates and backfills on open)
	stores, err := database.OpenAll(cfg.Stores)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()
	log.Println("✅ Stores opened")

	// 3. Reconcile deliveries interrupted before their order allocation
	orderLedger := orders.NewService(stores.Orders)
	recorder := delivery.NewService(stores.Deliveries, orderLedger, cfg.Doc.NotePrefix)
	if err := recorder.ReconcilePending(); err != nil {
		log.Fatalf("Failed to reconcile pending deliveries: %v", err)
	}

	// 4. Store summary
	var productCount, orderCount, noteCount, shiftCount int64
	stores.Products.Model(&models.Product{}).Count(&productCount)
	stores.Orders.Model(&models.Order{}).Count(&orderCount)
	stores.Deliveries.Model(&models.DeliveryNote{}).Count(&noteCount)
	stores.Production.Model(&models.ShiftLog{}).Count(&shiftCount)
	log.Printf("📦 %d products | %d orders | %d delivery notes | %d shift logs",
		productCount, orderCount, noteCount, shiftCount)
	log.Println("✅ Ready")
}
