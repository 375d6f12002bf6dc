package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thinkful-ei-bee/thingful/libs/auth"
	"github.com/thinkful-ei-bee/thingful/libs/password"
)

// TestJWTSecret is the secret routers under test are built with.
const TestJWTSecret = "test-secret"

var fixtureTime = time.Date(2029, time.January, 22, 16, 28, 32, 615000000, time.UTC)

type TestUser struct {
	ID          int64
	UserName    string
	FullName    string
	Nickname    string
	Password    string
	DateCreated time.Time
}

type TestThing struct {
	ID          int64
	Title       string
	Image       string
	Content     string
	UserID      int64
	DateCreated time.Time
}

type TestReview struct {
	ID          int64
	Rating      int
	Text        string
	ThingID     int64
	UserID      int64
	DateCreated time.Time
}

func MakeUsersArray() []TestUser {
	return []TestUser{
		{ID: 1, UserName: "test-user-1", FullName: "Test user 1", Nickname: "TU1", Password: "password", DateCreated: fixtureTime},
		{ID: 2, UserName: "test-user-2", FullName: "Test user 2", Nickname: "TU2", Password: "password", DateCreated: fixtureTime},
		{ID: 3, UserName: "test-user-3", FullName: "Test user 3", Nickname: "TU3", Password: "password", DateCreated: fixtureTime},
		{ID: 4, UserName: "test-user-4", FullName: "Test user 4", Nickname: "TU4", Password: "password", DateCreated: fixtureTime},
	}
}

func MakeThingsArray(users []TestUser) []TestThing {
	titles := []string{"First test thing!", "Second test thing!", "Third test thing!", "Fourth test thing!"}
	things := make([]TestThing, 0, len(titles))
	for i, title := range titles {
		things = append(things, TestThing{
			ID:          int64(i + 1),
			Title:       title,
			Image:       "http://placehold.it/500x500",
			Content:     "Lorem ipsum dolor sit amet, consectetur adipisicing elit.",
			UserID:      users[i%len(users)].ID,
			DateCreated: fixtureTime,
		})
	}
	return things
}

func MakeReviewsArray(users []TestUser, things []TestThing) []TestReview {
	specs := []struct {
		rating int
		thing  int
		user   int
	}{
		{2, 0, 0}, {3, 0, 1}, {1, 0, 2}, {5, 0, 3}, {1, len(things) - 1, 0}, {5, len(things) - 1, 2}, {1, 2, 1},
	}
	reviews := make([]TestReview, 0, len(specs))
	for i, s := range specs {
		reviews = append(reviews, TestReview{
			ID:          int64(i + 1),
			Rating:      s.rating,
			Text:        "This thing is amazing.",
			ThingID:     things[s.thing].ID,
			UserID:      users[s.user].ID,
			DateCreated: fixtureTime,
		})
	}
	return reviews
}

// MakeThingsFixtures returns the deterministic rows every scenario seeds.
func MakeThingsFixtures() ([]TestUser, []TestThing, []TestReview) {
	users := MakeUsersArray()
	things := MakeThingsArray(users)
	return users, things, MakeReviewsArray(users, things)
}

// CleanTables empties every thingful table and restarts the id sequences.
func CleanTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE thingful_reviews, thingful_things, thingful_users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		return fmt.Errorf("clean tables: %w", err)
	}
	return nil
}

func SeedThingsTables(ctx context.Context, pool *pgxpool.Pool, users []TestUser, things []TestThing, reviews []TestReview) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := seedUsers(ctx, tx, users); err != nil {
			return err
		}
		for _, th := range things {
			if _, err := tx.Exec(ctx, `
				INSERT INTO thingful_things (id, title, image, content, user_id, date_created)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, th.ID, th.Title, th.Image, th.Content, th.UserID, th.DateCreated); err != nil {
				return fmt.Errorf("seed thing %d: %w", th.ID, err)
			}
		}
		for _, r := range reviews {
			if _, err := tx.Exec(ctx, `
				INSERT INTO thingful_reviews (id, text, rating, thing_id, user_id, date_created)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, r.ID, r.Text, r.Rating, r.ThingID, r.UserID, r.DateCreated); err != nil {
				return fmt.Errorf("seed review %d: %w", r.ID, err)
			}
		}
		return resetSequences(ctx, tx)
	})
}

func seedUsers(ctx context.Context, tx pgx.Tx, users []TestUser) error {
	for _, u := range users {
		hash, err := password.Hash(u.Password, password.FastParams)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO thingful_users (id, user_name, full_name, nickname, password, date_created)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		`, u.ID, u.UserName, u.FullName, u.Nickname, hash, u.DateCreated); err != nil {
			return fmt.Errorf("seed user %s: %w", u.UserName, err)
		}
	}
	return nil
}

func resetSequences(ctx context.Context, tx pgx.Tx) error {
	for _, table := range []string{"thingful_users", "thingful_things", "thingful_reviews"} {
		q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %[1]s`, table)
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}

// MakeAuthHeader signs an HS256 token for user with secret and returns the
// Authorization header value.
func MakeAuthHeader(user TestUser, secret string) string {
	signed, err := auth.NewToken(&auth.User{ID: user.ID, UserName: user.UserName}, []byte(secret), 0, time.Now())
	if err != nil {
		panic(fmt.Sprintf("sign test token: %v", err))
	}
	return "Bearer " + signed
}
