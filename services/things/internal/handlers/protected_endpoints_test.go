package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkful-ei-bee/thingful/libs/auth"
	"github.com/thinkful-ei-bee/thingful/libs/logging"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/testutil"
)

type protectedEndpoint struct {
	name   string
	method string
	path   string
	body   any
}

var protectedEndpoints = []protectedEndpoint{
	{name: "GET /api/things/:thing_id", method: http.MethodGet, path: "/api/things/1"},
	{name: "GET /api/things/:thing_id/reviews", method: http.MethodGet, path: "/api/things/1/reviews"},
	{name: "POST /api/reviews", method: http.MethodPost, path: "/api/reviews", body: map[string]any{
		"thing_id": 1, "rating": 3, "text": "Test new review",
	}},
}

type rejectionCase struct {
	name    string
	header  string
	message string
}

func rejectionCases(validUser testutil.TestUser) []rejectionCase {
	invalidUser := testutil.TestUser{ID: 1, UserName: "user-not-exist"}
	return []rejectionCase{
		{
			name:    "responds 401 'Missing bearer token' when no bearer token",
			header:  "",
			message: auth.MessageMissingToken,
		},
		{
			name:    "responds 401 'Missing bearer token' when not a bearer scheme",
			header:  "Basic dGVzdC11c2VyLTE6cGFzc3dvcmQ=",
			message: auth.MessageMissingToken,
		},
		{
			name:    "responds 401 'Unauthorized request' when invalid JWT secret",
			header:  testutil.MakeAuthHeader(validUser, "bad-secret"),
			message: auth.MessageUnauthorized,
		},
		{
			name:    "responds 401 'Unauthorized request' when malformed token",
			header:  "Bearer not-a-jwt",
			message: auth.MessageUnauthorized,
		},
		{
			name:    "responds 401 'Unauthorized request' when invalid sub in payload",
			header:  testutil.MakeAuthHeader(invalidUser, testutil.TestJWTSecret),
			message: auth.MessageUnauthorized,
		},
	}
}

func newTestRouter(store Repository, users auth.UserFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(store, logging.Discard()).Register(router, []byte(testutil.TestJWTSecret), users)
	return router
}

// assertRejected sends the same request several times; every answer must be
// the exact 401 body.
func assertRejected(t *testing.T, router http.Handler, ep protectedEndpoint, rc rejectionCase) {
	t.Helper()
	for i := 0; i < 3; i++ {
		resp := testutil.MakeRequest(router, ep.method, ep.path, ep.body, rc.header)
		testutil.AssertJSONError(t, resp, http.StatusUnauthorized, rc.message)
	}
}

func assertAllowed(t *testing.T, router http.Handler, ep protectedEndpoint, validUser testutil.TestUser) {
	t.Helper()
	resp := testutil.MakeRequest(router, ep.method, ep.path, ep.body, testutil.MakeAuthHeader(validUser, testutil.TestJWTSecret))
	assert.NotEqual(t, http.StatusUnauthorized, resp.Code, "body: %s", resp.Body.String())
	assert.Less(t, resp.Code, http.StatusBadRequest, "body: %s", resp.Body.String())
}

func TestProtectedEndpoints(t *testing.T) {
	users, things, reviews := testutil.MakeThingsFixtures()

	for _, ep := range protectedEndpoints {
		t.Run(ep.name, func(t *testing.T) {
			for _, rc := range rejectionCases(users[0]) {
				t.Run(rc.name, func(t *testing.T) {
					store := testutil.NewMemoryStore(users, things, reviews)
					router := newTestRouter(store, store)

					assertRejected(t, router, ep, rc)

					stored, err := store.ListReviewsForThing(t.Context(), 1)
					require.NoError(t, err)
					assert.Len(t, stored, 4, "rejected requests must not write")
				})
			}

			t.Run("passes a resolvable token through to the route", func(t *testing.T) {
				store := testutil.NewMemoryStore(users, things, reviews)
				assertAllowed(t, newTestRouter(store, store), ep, users[0])
			})
		})
	}
}

func TestProtectedEndpointsSkipLookupWithoutToken(t *testing.T) {
	users, things, reviews := testutil.MakeThingsFixtures()
	store := testutil.NewMemoryStore(users, things, reviews)
	router := newTestRouter(store, store)

	for _, ep := range protectedEndpoints {
		testutil.MakeRequest(router, ep.method, ep.path, ep.body, "")
		testutil.MakeRequest(router, ep.method, ep.path, ep.body, testutil.MakeAuthHeader(users[0], "bad-secret"))
	}
	assert.Zero(t, store.Lookups())
}

func TestRejectionIsRouteIndependent(t *testing.T) {
	users, things, reviews := testutil.MakeThingsFixtures()
	store := testutil.NewMemoryStore(users, things, reviews)
	router := newTestRouter(store, store)

	for _, rc := range rejectionCases(users[0]) {
		var first string
		for _, ep := range protectedEndpoints {
			resp := testutil.MakeRequest(router, ep.method, ep.path, ep.body, rc.header)
			require.Equal(t, http.StatusUnauthorized, resp.Code)
			if first == "" {
				first = resp.Body.String()
				continue
			}
			assert.JSONEq(t, first, resp.Body.String(), "%s on %s", rc.name, ep.name)
		}
	}
}

func TestGuardRunsBeforeThingLookup(t *testing.T) {
	users, things, reviews := testutil.MakeThingsFixtures()
	store := testutil.NewMemoryStore(users, things, reviews)
	router := newTestRouter(store, store)

	resp := testutil.MakeRequest(router, http.MethodGet, "/api/things/9999", nil, "")
	testutil.AssertJSONError(t, resp, http.StatusUnauthorized, auth.MessageMissingToken)
}
