// Command seed fills a dev or test database with demo users, things and
// reviews and prints a bearer token for the first demo user.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thinkful-ei-bee/thingful/libs/auth"
	"github.com/thinkful-ei-bee/thingful/libs/password"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/config"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/storage"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/storage/migrations"
)

type demoUser struct {
	userName string
	fullName string
	nickname string
	password string
}

var demoUsers = []demoUser{
	{userName: "dunder", fullName: "Dunder Mifflin", nickname: "dm", password: "password"},
	{userName: "b.deboop", fullName: "Bodeep Deboop", nickname: "Bo", password: "bo-password"},
	{userName: "c.bloggs", fullName: "Charlie Bloggs", nickname: "Charlie", password: "charlie-password"},
}

var demoThings = []struct {
	title   string
	content string
	owner   string
}{
	{"Fuzzy Pillow", "A pillow so fuzzy it might be a small animal.", "dunder"},
	{"Rusty Spoon", "Slightly rusty, still scoops.", "b.deboop"},
	{"Pocket Sundial", "Accurate twice a day on sunny days.", "c.bloggs"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.App.Env != "dev" && cfg.App.Env != "test" {
		log.Fatalf("refusing to seed: THINGFUL_ENV must be 'dev' or 'test' (got '%s')", cfg.App.Env)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	if err := migrations.Up(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	fmt.Println("Seeding database...")

	if err := seedUsers(ctx, pool); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	fmt.Println("✓ Users seeded")

	if err := seedThings(ctx, pool); err != nil {
		log.Fatalf("seed things: %v", err)
	}
	fmt.Println("✓ Things and reviews seeded")

	user, err := storage.New(pool).FindByUserName(ctx, demoUsers[0].userName)
	if err != nil {
		log.Fatalf("load demo user: %v", err)
	}
	token, err := auth.NewToken(user, []byte(cfg.JWTSecret), cfg.JWTExpiry, time.Now())
	if err != nil {
		log.Fatalf("sign demo token: %v", err)
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("\nDemo user: %s / %s\n", demoUsers[0].userName, demoUsers[0].password)
	fmt.Printf("Authorization: Bearer %s\n", token)
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	for _, u := range demoUsers {
		hash, err := password.Hash(u.password, password.DefaultParams)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO thingful_users (user_name, full_name, nickname, password)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_name) DO NOTHING
		`, u.userName, u.fullName, u.nickname, hash)
		if err != nil {
			return fmt.Errorf("insert %s: %w", u.userName, err)
		}
	}
	return nil
}

func seedThings(ctx context.Context, pool *pgxpool.Pool) error {
	for i, th := range demoThings {
		var thingID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO thingful_things (title, image, content, user_id)
			SELECT $1, $2, $3, id FROM thingful_users WHERE user_name = $4
			AND NOT EXISTS (SELECT 1 FROM thingful_things WHERE title = $1)
			RETURNING id
		`, th.title, "http://placehold.it/500x500", th.content, th.owner).Scan(&thingID)
		if errors.Is(err, pgx.ErrNoRows) {
			// already seeded
			continue
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", th.title, err)
		}

		reviewer := demoUsers[(i+1)%len(demoUsers)].userName
		_, err = pool.Exec(ctx, `
			INSERT INTO thingful_reviews (text, rating, thing_id, user_id)
			SELECT $1, $2, $3, id FROM thingful_users WHERE user_name = $4
		`, "Would use again.", 4, thingID, reviewer)
		if err != nil {
			return fmt.Errorf("insert review for %s: %w", th.title, err)
		}
	}
	return nil
}
