// Seeder bootstraps a fresh database with an admin account and, optionally,
// demo data for local development.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	if err := migrations.Up(pool); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	adminID := seedAdmin(ctx, pool)
	if parseBool(os.Getenv("SEED_DEMO")) {
		seedDemoCustomers(ctx, pool, adminID)
	}

	log.Println("Seeding completed successfully!")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool) string {
	email := strings.ToLower(strings.TrimSpace(envOr("ADMIN_EMAIL", "admin@agency.local")))
	password := envOr("ADMIN_PASSWORD", "")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is not set")
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO staff (name, email, password_hash, roles)
		VALUES ($1, $2, $3, '{admin}')
		ON CONFLICT (email) DO NOTHING`,
		envOr("ADMIN_NAME", "Administrator"), email, hash)
	if err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	var adminID string
	if err := pool.QueryRow(ctx, `SELECT id FROM staff WHERE email = $1`, email).Scan(&adminID); err != nil {
		log.Fatalf("Failed to look up admin account: %v", err)
	}
	log.Printf("Admin account ready: %s", email)
	return adminID
}

func seedDemoCustomers(ctx context.Context, pool *pgxpool.Pool, adminID string) {
	customers := []struct {
		name  string
		phone string
		email string
	}{
		{"Rahim Travels", "+8801711000001", "rahim@example.com"},
		{"Karim Hajj Group", "+8801711000002", "karim@example.com"},
		{"Salma Begum", "+8801711000003", "salma@example.com"},
	}
	opening := common.ParseAmount(os.Getenv("SEED_DEMO_DEPOSIT"))
	for _, c := range customers {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO customers (name, phone, email)
			VALUES ($1, $2, $3)
			ON CONFLICT (phone) DO NOTHING
			RETURNING id`,
			c.name, c.phone, c.email).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			log.Fatalf("Failed to seed customer %s: %v", c.name, err)
		}
		if opening > 0 {
			seedOpeningBalance(ctx, pool, id, adminID, opening)
		}
	}
	log.Printf("Seeded %d demo customers", len(customers))
}

// seedOpeningBalance credits the demo customer with a starting deposit so the
// ledger and the cached balance stay in step.
func seedOpeningBalance(ctx context.Context, pool *pgxpool.Pool, customerID, adminID string, amount int64) {
	_, err := pool.Exec(ctx, `
		INSERT INTO deposit_entries (customer_id, kind, amount, balance_after, reference_type, note, created_by)
		VALUES ($1, 'credit', $2, $2, 'manual', 'opening balance', $3)`,
		customerID, amount, adminID)
	if err != nil {
		log.Fatalf("Failed to seed opening deposit for %s: %v", customerID, err)
	}
	if _, err := pool.Exec(ctx, `UPDATE customers SET deposit_balance = $1 WHERE id = $2`, amount, customerID); err != nil {
		log.Fatalf("Failed to set deposit balance for %s: %v", customerID, err)
	}
}

func envOr(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "t", "true", "yes", "on":
		return true
	}
	return false
}
