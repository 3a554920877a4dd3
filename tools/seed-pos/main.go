// Command seed-pos loads purchase-order reference data into the pipeline
// database from a JSON file. Rows are upserted by PO number, so re-running
// the tool with a refreshed export is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/apflow/invoice-pipeline/internal/config"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	inputFile  = flag.String("file", "", "Path to the purchase orders JSON file")
)

func main() {
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-pos -file <purchase-orders.json>")
		os.Exit(2)
	}

	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Initialize(logger.Config{Debug: cfg.Debug}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		logger.Fatal("Failed to read input file", zap.Error(err), zap.String("file", *inputFile))
	}

	orders, err := parseOrders(data)
	if err != nil {
		logger.Fatal("Failed to parse input file", zap.Error(err), zap.String("file", *inputFile))
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	ctx := context.Background()
	loaded := 0
	for i := range orders {
		if err := dataStore.UpsertPurchaseOrder(ctx, &orders[i]); err != nil {
			logger.Fatal("Failed to upsert purchase order",
				zap.Error(err),
				zap.String("po_number", orders[i].PONumber))
		}
		loaded++
	}

	logger.Info("Purchase orders loaded",
		zap.Int("count", loaded),
		zap.String("file", *inputFile))
}
