package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrUserNotFound is what a UserFinder returns when no user carries the name.
var ErrUserNotFound = errors.New("user not found")

const ContextUserKey = "auth_user"

type User struct {
	ID          int64
	UserName    string
	FullName    string
	Nickname    *string
	DateCreated time.Time
}

// UserFinder resolves a token subject to a stored user.
type UserFinder interface {
	FindByUserName(ctx context.Context, userName string) (*User, error)
}

type ctxKey struct{}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromRequestContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*User)
	return user, ok && user != nil
}

// UserFromContext returns the user the guard resolved for this request.
func UserFromContext(c *gin.Context) (*User, bool) {
	val, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*User)
	return user, ok && user != nil
}
