package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"groupchat/config"
	"groupchat/internal/auth"
	"groupchat/internal/domain/user"
	"groupchat/internal/repository"
	"groupchat/pkg/database"

	"gorm.io/gorm"
)

const usage = `
Group Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create or update every table and index
  status      Show database connection status and table sizes
  seed        Seed the database with development data
  token       Print an access token for -user (development only)
  reset       Drop all tables and re-run migrations (DANGEROUS)

Flags:
  -users int      Number of test users to seed (default 3)
  -user string    Username to issue a token for (default "admin")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed -users 5
  go run cmd/migrate/main.go token -user user1
`

var tables = []string{"users", "profiles", "chats", "chat_members", "messages", "attachments", "friend_requests", "notifications"}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	userCount := fs.Int("users", 3, "Number of test users to seed")
	username := fs.String("user", "admin", "Username to issue a token for")
	fs.Usage = func() { fmt.Print(usage) }
	_ = fs.Parse(os.Args[2:])

	cfg := config.LoadConfig()
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx := context.Background()
	switch command {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(ctx, db)
	case "seed":
		runSeed(ctx, db, *userCount)
	case "token":
		issueToken(ctx, db, cfg, *username)
	case "reset":
		runReset(db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("Running migrations...")
	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func showStatus(ctx context.Context, db *gorm.DB) {
	if err := database.HealthCheck(ctx, db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			log.Printf("Table %-16s does not exist", table)
			continue
		}
		var count int64
		if err := db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			log.Printf("Error counting table %s: %v", table, err)
			continue
		}
		log.Printf("Table %-16s exists (%d rows)", table, count)
	}
}

func runSeed(ctx context.Context, db *gorm.DB, userCount int) {
	log.Println("Seeding database...")
	cfg := database.DefaultSeedConfig()
	cfg.TestUserCount = userCount
	result, err := database.Seed(ctx, db, cfg)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("   - Admin user: %s (%s)", result.Admin.Username, result.Admin.ID)
	log.Printf("   - Test users: %d", len(result.Users))
	log.Printf("   - Chat: %s (%s)", result.Chat.Name, result.Chat.ID)
	log.Printf("   - Messages: %d", len(result.Messages))
	log.Println("Seeding completed")
}

func issueToken(ctx context.Context, db *gorm.DB, cfg *config.Config, username string) {
	u, err := repository.NewUserRepository(db).GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("Unknown user %s: %v", username, err)
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to configure tokens: %v", err)
	}
	token, expiresAt, err := tokens.Issue(u.ID)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	log.Printf("Token for %s expires at %s", displayName(u), expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}

func runReset(db *gorm.DB) {
	log.Println("WARNING: dropping all tables")
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			log.Fatalf("Failed to drop %s: %v", tables[i], err)
		}
	}
	runMigrationsUp(db)
	log.Println("Database reset completed")
}

func displayName(u user.User) string {
	if u.IsStaff {
		return u.Username + " (staff)"
	}
	return u.Username
}
