package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/storage"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/testutil"
)

// seedScenario gives one scenario freshly seeded tables and empties them again
// when it ends.
func seedScenario(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	users, things, reviews := testutil.MakeThingsFixtures()

	require.NoError(t, testutil.CleanTables(ctx, pool))
	t.Cleanup(func() {
		if err := testutil.CleanTables(context.Background(), pool); err != nil {
			t.Logf("cleanup: %v", err)
		}
	})
	require.NoError(t, testutil.SeedThingsTables(ctx, pool, users, things, reviews))
}

func TestProtectedEndpointsIntegration(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	store := storage.New(pool)
	router := newTestRouter(store, store)
	users, _, _ := testutil.MakeThingsFixtures()

	for _, ep := range protectedEndpoints {
		t.Run(ep.name, func(t *testing.T) {
			for _, rc := range rejectionCases(users[0]) {
				t.Run(rc.name, func(t *testing.T) {
					seedScenario(t, pool)
					assertRejected(t, router, ep, rc)

					reviews, err := store.ListReviewsForThing(context.Background(), 1)
					require.NoError(t, err)
					require.Len(t, reviews, 4)
				})
			}

			t.Run("passes a resolvable token through to the route", func(t *testing.T) {
				seedScenario(t, pool)
				assertAllowed(t, router, ep, users[0])
			})
		})
	}
}

func TestThingsIntegration(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	store := storage.New(pool)
	router := newTestRouter(store, store)
	users, _, _ := testutil.MakeThingsFixtures()
	header := testutil.MakeAuthHeader(users[0], testutil.TestJWTSecret)

	t.Run("GET /api/things is public", func(t *testing.T) {
		seedScenario(t, pool)
		resp := testutil.MakeRequest(router, http.MethodGet, "/api/things", nil, "")
		testutil.AssertHTTPStatus(t, resp, http.StatusOK)
	})

	t.Run("GET /api/things/:thing_id 404 for a missing thing", func(t *testing.T) {
		seedScenario(t, pool)
		resp := testutil.MakeRequest(router, http.MethodGet, "/api/things/123456", nil, header)
		testutil.AssertJSONError(t, resp, http.StatusNotFound, messageThingNotFound)
	})

	t.Run("POST /api/reviews stores the review under the token user", func(t *testing.T) {
		seedScenario(t, pool)
		resp := testutil.MakeRequest(router, http.MethodPost, "/api/reviews", map[string]any{
			"thing_id": 2, "rating": 4, "text": "Fresh review",
		}, header)
		testutil.AssertHTTPStatus(t, resp, http.StatusCreated)

		reviews, err := store.ListReviewsForThing(context.Background(), 2)
		require.NoError(t, err)
		require.NotEmpty(t, reviews)
		last := reviews[len(reviews)-1]
		require.Equal(t, "Fresh review", last.Text)
		require.Equal(t, users[0].ID, last.User.ID)
	})
}
