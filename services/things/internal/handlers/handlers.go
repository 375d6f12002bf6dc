package handlers

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thinkful-ei-bee/thingful/libs/auth"
	"github.com/thinkful-ei-bee/thingful/services/things/internal/storage"
)

const (
	messageThingNotFound = "Thing doesn't exist"
	messageInternal      = "internal error"

	contextThingKey = "thing"
)

// Repository is the read/write surface the routes need from storage.
type Repository interface {
	ListThings(ctx context.Context) ([]storage.ThingSummary, error)
	GetThing(ctx context.Context, id int64) (*storage.ThingSummary, error)
	ListReviewsForThing(ctx context.Context, thingID int64) ([]storage.Review, error)
	InsertReview(ctx context.Context, in storage.NewReview) (*storage.Review, error)
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"user_name"`
	FullName    string    `json:"full_name"`
	Nickname    *string   `json:"nickname"`
	DateCreated time.Time `json:"date_created"`
}

type thingResponse struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	Image               string    `json:"image"`
	Content             string    `json:"content"`
	DateCreated         time.Time `json:"date_created"`
	UserID              *int64    `json:"user_id"`
	NumberOfReviews     int       `json:"number_of_reviews"`
	AverageReviewRating float64   `json:"average_review_rating"`
}

type reviewResponse struct {
	ID          int64        `json:"id"`
	Rating      int          `json:"rating"`
	Text        string       `json:"text"`
	ThingID     int64        `json:"thing_id"`
	DateCreated time.Time    `json:"date_created"`
	User        userResponse `json:"user"`
}

type createReviewRequest struct {
	ThingID *int64 `json:"thing_id"`
	Rating  *int   `json:"rating"`
	Text    string `json:"text"`
}

func New(store Repository, logger *slog.Logger) *Handler {
	return &Handler{Store: store, Logger: logger}
}

// Register mounts the API. Everything except the things listing sits behind
// the bearer-token guard, which resolves subjects through users.
func (h *Handler) Register(r gin.IRouter, jwtSecret []byte, users auth.UserFinder) {
	api := r.Group("/api")
	api.GET("/things", h.ListThings)

	protected := api.Group("", auth.Middleware(jwtSecret, users, h.Logger))
	protected.GET("/things/:thing_id", h.requireThing, h.GetThing)
	protected.GET("/things/:thing_id/reviews", h.requireThing, h.ThingReviews)
	protected.POST("/reviews", h.CreateReview)
}

func (h *Handler) ListThings(c *gin.Context) {
	things, err := h.Store.ListThings(c.Request.Context())
	if err != nil {
		h.internalError(c, "list things failed", err)
		return
	}

	out := make([]thingResponse, 0, len(things))
	for i := range things {
		out = append(out, serializeThing(&things[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetThing(c *gin.Context) {
	thing := c.MustGet(contextThingKey).(*storage.ThingSummary)
	c.JSON(http.StatusOK, serializeThing(thing))
}

func (h *Handler) ThingReviews(c *gin.Context) {
	thing := c.MustGet(contextThingKey).(*storage.ThingSummary)

	reviews, err := h.Store.ListReviewsForThing(c.Request.Context(), thing.ID)
	if err != nil {
		h.internalError(c, "list reviews failed", err)
		return
	}

	out := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, serializeReview(&reviews[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateReview(c *gin.Context) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: auth.MessageUnauthorized})
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if msg := validateReview(req); msg != "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	if _, err := h.Store.GetThing(c.Request.Context(), *req.ThingID); err != nil {
		if errors.Is(err, storage.ErrThingNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: messageThingNotFound})
			return
		}
		h.internalError(c, "thing lookup failed", err)
		return
	}

	review, err := h.Store.InsertReview(c.Request.Context(), storage.NewReview{
		ThingID: *req.ThingID,
		UserID:  user.ID,
		Text:    req.Text,
		Rating:  *req.Rating,
	})
	if err != nil {
		h.internalError(c, "insert review failed", err)
		return
	}

	c.Header("Location", "/api/reviews/"+strconv.FormatInt(review.ID, 10))
	c.JSON(http.StatusCreated, serializeReview(review))
}

// requireThing loads :thing_id for the handlers behind it; unknown or
// malformed ids are a 404.
func (h *Handler) requireThing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("thing_id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: messageThingNotFound})
		return
	}

	thing, err := h.Store.GetThing(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrThingNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: messageThingNotFound})
			return
		}
		h.internalError(c, "thing lookup failed", err)
		c.Abort()
		return
	}

	c.Set(contextThingKey, thing)
	c.Next()
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.Logger.Error(msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: messageInternal})
}

func validateReview(req createReviewRequest) string {
	switch {
	case req.ThingID == nil:
		return "Missing 'thing_id' in request body"
	case req.Rating == nil:
		return "Missing 'rating' in request body"
	case strings.TrimSpace(req.Text) == "":
		return "Missing 'text' in request body"
	case *req.Rating < 1 || *req.Rating > 5:
		return "'rating' must be between 1 and 5"
	}
	return ""
}

func serializeThing(t *storage.ThingSummary) thingResponse {
	return thingResponse{
		ID:                  t.ID,
		Title:               html.EscapeString(t.Title),
		Image:               html.EscapeString(t.Image),
		Content:             html.EscapeString(t.Content),
		DateCreated:         t.DateCreated,
		UserID:              t.UserID,
		NumberOfReviews:     t.NumberOfReviews,
		AverageReviewRating: t.AverageReviewRating,
	}
}

func serializeReview(r *storage.Review) reviewResponse {
	return reviewResponse{
		ID:          r.ID,
		Rating:      r.Rating,
		Text:        html.EscapeString(r.Text),
		ThingID:     r.ThingID,
		DateCreated: r.DateCreated,
		User:        serializeUser(&r.User),
	}
}

func serializeUser(u *auth.User) userResponse {
	out := userResponse{
		ID:          u.ID,
		UserName:    html.EscapeString(u.UserName),
		FullName:    html.EscapeString(u.FullName),
		DateCreated: u.DateCreated,
	}
	if u.Nickname != nil {
		nick := html.EscapeString(*u.Nickname)
		out.Nickname = &nick
	}
	return out
}
