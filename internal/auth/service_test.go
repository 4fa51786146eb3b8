package auth

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/digital-home/backend/internal/models"
)

// fakeUserStore is a map-backed UserStore enforcing username uniqueness under
// a mutex, mirroring the database constraint.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int
	byName map[string]*models.User
	byID   map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byName: make(map[string]*models.User),
		byID:   make(map[string]*models.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[username]; ok {
		return nil, ErrUsernameTaken
	}
	f.nextID++
	u := &models.User{
		ID:           "user-" + strconv.Itoa(f.nextID),
		Username:     username,
		PasswordHash: passwordHash,
	}
	f.byName[username] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakeHasher avoids argon2 cost in service tests; hashing behavior itself is
// covered by the hasher tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(password, encoded string) bool { return encoded == "hashed:"+password }

func newTestService() (*Service, *fakeUserStore, *memorySessions) {
	users := newFakeUserStore()
	sessions := newMemorySessions()
	return NewService(users, sessions, fakeHasher{}), users, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("then login returns the same user id", func(t *testing.T) {
		svc, _, _ := newTestService()

		reg, token, err := svc.Register(ctx, "alice", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", reg.Username)

		logged, token2, err := svc.Login(ctx, "alice", "secret123")
		require.NoError(t, err)
		assert.Equal(t, reg.ID, logged.ID)
		assert.NotEqual(t, token, token2)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		svc, users, _ := newTestService()

		_, _, err := svc.Register(ctx, "bob", "secret123")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "bob", "otherpassword")
		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.Equal(t, 1, users.count())
	})

	t.Run("concurrent duplicates: exactly one wins", func(t *testing.T) {
		svc, users, _ := newTestService()

		const n = 16
		errs := make(chan error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := svc.Register(ctx, "carol", "secret123")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var okCount, conflictCount int
		for err := range errs {
			switch {
			case err == nil:
				okCount++
			case assert.ErrorIs(t, err, ErrUsernameTaken):
				conflictCount++
			}
		}
		assert.Equal(t, 1, okCount)
		assert.Equal(t, n-1, conflictCount)
		assert.Equal(t, 1, users.count())
	})

	t.Run("validation lists every violated constraint", func(t *testing.T) {
		svc, users, _ := newTestService()

		_, _, err := svc.Register(ctx, "ab", "short")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 2)
		assert.Contains(t, verr.Error(), "username must be at least 3 characters")
		assert.Contains(t, verr.Error(), "password must be at least 6 characters")
		assert.Equal(t, 0, users.count())
	})

	t.Run("rejects bad username charset", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, _, err := svc.Register(ctx, "al ice!", "secret123")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 1)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, _, err := svc.Register(ctx, "alice", "secret123")
		require.NoError(t, err)

		_, _, unknownErr := svc.Login(ctx, "nosuchuser", "secret123")
		_, _, wrongErr := svc.Login(ctx, "alice", "wrongpassword")

		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})
}

func TestLogoutAndCurrentIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	reg, token, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	got, err := svc.CurrentIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, reg, got)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.CurrentIdentity(ctx, token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// logout is idempotent
	assert.NoError(t, svc.Logout(ctx, token))
	assert.NoError(t, svc.Logout(ctx, ""))

	_, err = svc.CurrentIdentity(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.CurrentIdentity(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
