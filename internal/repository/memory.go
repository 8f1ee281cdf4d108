package repository

import (
	"context"
	"sync"
	"time"

	"github.com/userauth/userauth-go/internal/model"
)

// MemoryUserRepository keeps users in process memory. It backs the memory://
// database URI and tests; data does not survive a restart.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
	now   func() time.Time
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]model.User),
		now:   time.Now,
	}
}

// Create inserts user unless its email is already present.
func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return ErrDuplicateEmail
	}

	stamp(user, r.now())
	r.users[user.Email] = *user
	return nil
}

// GetByEmail retrieves a user by exact email match.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Len returns the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
