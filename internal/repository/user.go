package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/userauth/userauth-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// stamp assigns the server-generated identity fields of a new user.
func stamp(user *model.User, now time.Time) {
	user.ID = uuid.NewString()
	user.CreatedAt = now.UTC().Truncate(time.Microsecond)
}
