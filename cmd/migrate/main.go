package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"matchup-chat/internal/config"
	"matchup-chat/internal/notify"
	"matchup-chat/internal/repository"
	"matchup-chat/pkg/database"
)

const usage = `
Matchup Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run schema migrations
  status      Show database connection status
  seed        Seed the database with the admin account
  seed-dev    Seed with development/demo data
  reset       Drop all tables and re-run migrations (DANGEROUS)
  truncate    Truncate all tables (DANGEROUS)
  email-test  Send a test email through the configured SMTP server

Flags:
  -admin-email string  Admin email for seeding (default "admin@tennismatchup.app")
  -admin-pass string   Admin password for seeding (default "Admin@123!")
  -to string           Recipient for email-test

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
  go run cmd/migrate/main.go email-test -to someone@example.com
`

func main() {
	adminEmail := flag.String("admin-email", "admin@tennismatchup.app", "Admin email for seeding")
	adminPass := flag.String("admin-pass", "Admin@123!", "Admin password for seeding")
	emailTo := flag.String("to", "", "Recipient for email-test")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	command := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if command == "email-test" {
		runEmailTest(cfg, *emailTo)
		return
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "seed":
		runSeedProduction(*adminEmail, *adminPass)
	case "seed-dev":
		runSeedDevelopment()
	case "reset":
		runReset()
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("Running migrations...")
	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func showStatus() {
	log.Println("Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{"users", "conversations", "conversation_participants", "messages", "message_read_status", "message_reactions"}
	for _, table := range tables {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.GetTableCount(table)
			log.Printf("Table %-26s exists (%d rows)", table, count)
		} else {
			log.Printf("Table %-26s does not exist", table)
		}
	}

	if err := database.HealthCheck(); err != nil {
		log.Printf("Health check warning: %v", err)
	} else {
		log.Println("Health check: PASSED")
	}
}

func runSeedProduction(adminEmail, adminPass string) {
	log.Println("Seeding database (production mode)...")

	admin, err := database.SeedProduction(adminEmail, adminPass)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Admin user created/verified: %s (ID: %d)", adminEmail, admin.ID)
	log.Println("Production seeding completed")
}

func runSeedDevelopment() {
	log.Println("Seeding database (development mode)...")

	result, err := database.SeedDevelopment()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seed summary:")
	log.Printf("   - Admin user: %s", result.AdminUser.Email)
	log.Printf("   - Demo users: %d", len(result.DemoUsers))
	log.Printf("   - Conversations: %d", len(result.Conversations))
	log.Printf("   - Messages: %d", len(result.Messages))
	log.Println("Development seeding completed")
}

func runReset() {
	log.Println("WARNING: This will DROP all tables and re-run migrations")

	log.Println("Dropping all tables...")
	if err := database.DropAllTables(); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	log.Println("Running migrations...")
	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Database reset completed")
}

func runTruncate() {
	log.Println("WARNING: This will TRUNCATE all tables")

	if err := database.TruncateAllTables(); err != nil {
		log.Fatalf("Truncate failed: %v", err)
	}
	log.Println("All tables truncated")
}

func runEmailTest(cfg *config.Config, to string) {
	if to == "" {
		log.Fatal("email-test requires -to")
	}

	log.Printf("Sending test email via %s:%d...", cfg.SMTP.Host, cfg.SMTP.Port)
	notifier := notify.NewEmailNotifier(cfg.SMTP, nil)
	if err := notifier.SendTest(to, "TennisMatchup test email", "<p>SMTP delivery is working.</p>"); err != nil {
		log.Fatalf("Email delivery failed: %v", err)
	}
	log.Printf("Test email sent to %s", to)
}
