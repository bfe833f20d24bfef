package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"stitchlink/config"
	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/domain/review"
	"stitchlink/internal/domain/tailor"
	"stitchlink/pkg/database"

	"gorm.io/gorm"
)

const usage = `
Stitchlink - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM auto-migrations for all tables
  status      Show database connection status
  truncate    Truncate all tables (DANGEROUS)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch flag.Arg(0) {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(db)
	case "truncate":
		runTruncate(db)
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("Running migrations...")

	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&tailor.Tailor{},
		&order.Order{},
		&order.Event{},
		&chat.Conversation{},
		&chat.Message{},
		&review.Review{},
	)
}

func showStatus(db *gorm.DB) {
	log.Println("Checking database status...")

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{"tailors", "orders", "order_events", "conversations", "messages", "reviews"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			log.Printf("Table %-16s does not exist", table)
			continue
		}
		var count int64
		db.Table(table).Count(&count)
		log.Printf("Table %-16s exists (%d rows)", table, count)
	}
}

func runTruncate(db *gorm.DB) {
	log.Println("WARNING: truncating all tables")

	tables := []string{"messages", "conversations", "reviews", "order_events", "orders", "tailors"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("Truncate of %s failed: %v", table, err)
		}
	}

	log.Println("All tables truncated")
}
