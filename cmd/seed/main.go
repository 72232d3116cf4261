// seed inserts a handful of test accounts into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sbekbolat/maglink/internal/infrastructure/postgres"
)

type accountSpec struct {
	email  string
	name   string
	active bool
	admin  bool
}

var accounts = []accountSpec{
	{"admin@maglink.local", "Site Admin", true, true},
	{"alice@maglink.local", "Alice", true, false},
	{"bob@maglink.local", "Bob", true, false},
	// Inactive: redemption must reject with "invalid account"
	{"carol@maglink.local", "Carol", false, false},
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	for _, a := range accounts {
		_, err := pool.Exec(ctx, `
			INSERT INTO accounts (email, name, active, admin)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, active = EXCLUDED.active, admin = EXCLUDED.admin`,
			a.email, a.name, a.active, a.admin,
		)
		if err != nil {
			log.Fatalf("seed %s: %v", a.email, err)
		}
		fmt.Printf("seeded %s (active=%t admin=%t)\n", a.email, a.active, a.admin)
	}
}
