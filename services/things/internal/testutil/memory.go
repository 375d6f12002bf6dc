package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thinkful-ei-bee/thingful/libs/auth"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/storage"
)

// MemoryStore serves the fixtures without a database. It satisfies
// auth.UserFinder and the handlers' repository.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []TestUser
	things  []TestThing
	reviews []TestReview
	lookups int
}

func NewMemoryStore(users []TestUser, things []TestThing, reviews []TestReview) *MemoryStore {
	return &MemoryStore{
		users:   append([]TestUser(nil), users...),
		things:  append([]TestThing(nil), things...),
		reviews: append([]TestReview(nil), reviews...),
	}
}

// Lookups is the number of FindByUserName calls served so far.
func (m *MemoryStore) Lookups() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookups
}

func (m *MemoryStore) FindByUserName(_ context.Context, userName string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, u := range m.users {
		if u.UserName == userName {
			return toAuthUser(u), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *MemoryStore) ListThings(_ context.Context) ([]storage.ThingSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]storage.ThingSummary, 0, len(m.things))
	for _, th := range m.things {
		items = append(items, m.summary(th))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryStore) GetThing(_ context.Context, id int64) (*storage.ThingSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, th := range m.things {
		if th.ID == id {
			s := m.summary(th)
			return &s, nil
		}
	}
	return nil, storage.ErrThingNotFound
}

func (m *MemoryStore) ListReviewsForThing(_ context.Context, thingID int64) ([]storage.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]storage.Review, 0)
	for _, r := range m.reviews {
		if r.ThingID == thingID {
			items = append(items, m.review(r))
		}
	}
	return items, nil
}

func (m *MemoryStore) InsertReview(_ context.Context, in storage.NewReview) (*storage.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := TestReview{
		ID:          int64(len(m.reviews) + 1),
		Rating:      in.Rating,
		Text:        in.Text,
		ThingID:     in.ThingID,
		UserID:      in.UserID,
		DateCreated: time.Now().UTC(),
	}
	m.reviews = append(m.reviews, r)
	out := m.review(r)
	return &out, nil
}

func (m *MemoryStore) summary(th TestThing) storage.ThingSummary {
	userID := th.UserID
	s := storage.ThingSummary{Thing: storage.Thing{
		ID:          th.ID,
		Title:       th.Title,
		Image:       th.Image,
		Content:     th.Content,
		DateCreated: th.DateCreated,
		UserID:      &userID,
	}}
	total := 0
	for _, r := range m.reviews {
		if r.ThingID == th.ID {
			s.NumberOfReviews++
			total += r.Rating
		}
	}
	if s.NumberOfReviews > 0 {
		s.AverageReviewRating = float64(total) / float64(s.NumberOfReviews)
	}
	return s
}

func (m *MemoryStore) review(r TestReview) storage.Review {
	out := storage.Review{
		ID:          r.ID,
		Text:        r.Text,
		Rating:      r.Rating,
		ThingID:     r.ThingID,
		DateCreated: r.DateCreated,
	}
	for _, u := range m.users {
		if u.ID == r.UserID {
			out.User = *toAuthUser(u)
		}
	}
	return out
}

func toAuthUser(u TestUser) *auth.User {
	user := &auth.User{ID: u.ID, UserName: u.UserName, FullName: u.FullName, DateCreated: u.DateCreated}
	if u.Nickname != "" {
		nick := u.Nickname
		user.Nickname = &nick
	}
	return user
}
