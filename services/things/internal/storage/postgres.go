package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thinkful-ei-bee/thingful/libs/auth"
)

var ErrThingNotFound = errors.New("thing not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FindByUserName resolves a token subject. It returns auth.ErrUserNotFound
// when no user carries the name.
func (s *Store) FindByUserName(ctx context.Context, userName string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_name, full_name, nickname, date_created
		FROM thingful_users
		WHERE user_name = $1
	`, userName)

	var user auth.User
	if err := row.Scan(&user.ID, &user.UserName, &user.FullName, &user.Nickname, &user.DateCreated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

const thingSummaryQuery = `
	SELECT t.id, t.title, COALESCE(t.image, ''), COALESCE(t.content, ''), t.date_created, t.user_id,
		COUNT(r.id)::int AS number_of_reviews,
		COALESCE(AVG(r.rating), 0)::float8 AS average_review_rating
	FROM thingful_things t
	LEFT JOIN thingful_reviews r ON r.thing_id = t.id
`

func (s *Store) ListThings(ctx context.Context) ([]ThingSummary, error) {
	rows, err := s.pool.Query(ctx, thingSummaryQuery+" GROUP BY t.id ORDER BY t.id")
	if err != nil {
		return nil, fmt.Errorf("list things: %w", err)
	}
	defer rows.Close()

	items := make([]ThingSummary, 0)
	for rows.Next() {
		thing, err := scanThingSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *thing)
	}
	return items, rows.Err()
}

func (s *Store) GetThing(ctx context.Context, id int64) (*ThingSummary, error) {
	row := s.pool.QueryRow(ctx, thingSummaryQuery+" WHERE t.id = $1 GROUP BY t.id", id)
	thing, err := scanThingSummary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrThingNotFound
		}
		return nil, err
	}
	return thing, nil
}

const reviewQuery = `
	SELECT r.id, r.text, r.rating, r.thing_id, r.date_created,
		u.id, u.user_name, u.full_name, u.nickname, u.date_created
	FROM thingful_reviews r
	JOIN thingful_users u ON u.id = r.user_id
`

func (s *Store) ListReviewsForThing(ctx context.Context, thingID int64) ([]Review, error) {
	rows, err := s.pool.Query(ctx, reviewQuery+" WHERE r.thing_id = $1 ORDER BY r.id", thingID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *review)
	}
	return items, rows.Err()
}

func (s *Store) InsertReview(ctx context.Context, in NewReview) (*Review, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO thingful_reviews (text, rating, thing_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, in.Text, in.Rating, in.ThingID, in.UserID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	review, err := scanReview(s.pool.QueryRow(ctx, reviewQuery+" WHERE r.id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	return review, nil
}

func scanThingSummary(row pgx.Row) (*ThingSummary, error) {
	var t ThingSummary
	if err := row.Scan(&t.ID, &t.Title, &t.Image, &t.Content, &t.DateCreated, &t.UserID,
		&t.NumberOfReviews, &t.AverageReviewRating); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanReview(row pgx.Row) (*Review, error) {
	var r Review
	if err := row.Scan(&r.ID, &r.Text, &r.Rating, &r.ThingID, &r.DateCreated,
		&r.User.ID, &r.User.UserName, &r.User.FullName, &r.User.Nickname, &r.User.DateCreated); err != nil {
		return nil, err
	}
	return &r, nil
}
