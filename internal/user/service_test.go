package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelhive/hotel-booking-backend/internal/auth"
)

type fakeUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
	seq     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailAlreadyUsed
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt

	clone := *u
	r.byID[u.ID] = &clone
	r.byEmail[u.Email] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	clone := *u
	clone.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = &clone
	r.byEmail[u.Email] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func newUserService() (Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	// Low cost keeps the test fast; production cost comes from config.
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4)), repo
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newUserService()

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "  Ada@Example.COM ",
		Password:  "supersafe1",
		FirstName: " Ada ",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.FirstName)
	assert.True(t, u.IsActive)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "supersafe1", u.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "  ", Password: "supersafe1"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "supersafe1"})
	require.NoError(t, err)

	// Same address with different casing is still a duplicate.
	_, err = svc.Register(ctx, RegisterRequest{Email: "A@B.com", Password: "supersafe1"})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "supersafe1"})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "A@b.com", "supersafe1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Login(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.com", "supersafe1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "supersafe1"})
	require.NoError(t, err)

	repo.byEmail[u.Email].IsActive = false

	_, err = svc.Login(ctx, "a@b.com", "supersafe1")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	svc, repo := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "supersafe1"})
	require.NoError(t, err)
	require.Nil(t, repo.byID[u.ID].LastLoginAt)

	_, err = svc.Login(ctx, "a@b.com", "supersafe1")
	require.NoError(t, err)
	assert.NotNil(t, repo.byID[u.ID].LastLoginAt)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		Email:     "a@b.com",
		Password:  "supersafe1",
		FirstName: "Ada",
		Phone:     "123456",
	})
	require.NoError(t, err)

	newName := "Augusta"
	emptyPhone := " "
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{
		FirstName: &newName,
		Phone:     &emptyPhone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Nil(t, updated.Phone, "blank phone clears the stored value")
}
