package repositories

import (
	"strings"
	"sync"
	"time"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"gorm.io/gorm"
)

// MemoryUserRepository is a mutex-guarded UserRepository used by the test
// suite. Lookups that miss return gorm.ErrRecordNotFound like the Postgres
// implementation.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

// NewMemoryUserRepository creates an empty in-memory user store
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uint]*models.User)}
}

func (r *MemoryUserRepository) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *MemoryUserRepository) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryUserRepository) GetUserByUID(uid string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UID == uid })
}

func (r *MemoryUserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) GetUserByUsername(username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(query)
	var matched []models.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			matched = append(matched, *u)
		}
		if limit > 0 && len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (r *MemoryUserRepository) UsernameExists(username string) (bool, error) {
	_, err := r.find(func(u *models.User) bool { return u.Username == username })
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MemoryUserRepository) UpdateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *MemoryUserRepository) AdjustTotalPosts(id uint, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		u.TotalPosts += delta
	}
	return nil
}

func (r *MemoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
