package main

import (
	"context"
	"flag"
	"log"
	"os"

	"wager_service/internal/auth"
	"wager_service/internal/db"
	"wager_service/internal/domain"
	"wager_service/internal/ledger"
	"wager_service/internal/repository"
)

// Dev tool: credit a player balance and print a token for manual testing.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	playerID := flag.Int64("player", 1, "player id to seed")
	amount := flag.String("amount", "100.00", "amount to credit")
	flag.Parse()

	credit, err := domain.ParseAmount(*amount)
	if err != nil {
		log.Fatalf("bad amount: %v", err)
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ldg := ledger.New(repository.NewLedgerRepository(pool))
	ctx := context.Background()

	balance, err := ldg.Credit(ctx, *playerID, credit, "seed:dev")
	if err != nil {
		log.Fatalf("credit failed: %v", err)
	}
	log.Printf("player=%d balance=%s\n", *playerID, balance)

	auth.InitJWT(secret)
	token, err := auth.GenerateJWT(*playerID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
