package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/commerce/backend/internal/infrastructure/logger"
	"github.com/commerce/backend/internal/infrastructure/persistence"
	"github.com/commerce/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		if err := db.Migrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Migration completed")
	case "status":
		migrator := db.DB.Migrator()
		for _, table := range []string{
			models.OrderModel{}.TableName(),
			models.OrderItemModel{}.TableName(),
			models.OrderStatusHistoryModel{}.TableName(),
			models.TransactionModel{}.TableName(),
			models.RefundModel{}.TableName(),
		} {
			log.Info("Table status",
				zap.String("table", table),
				zap.Bool("exists", migrator.HasTable(table)),
			)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up      Apply schema migrations")
	fmt.Println("  status  Show table status")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -log-level  Log level (default: info)")
}
