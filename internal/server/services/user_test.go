package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/auth"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/flashdeck/internal/server/repositories/users"
)

func TestRegister_Success(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, token, err := e.users.Register(ctx, "  Alice ", " Alice@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	id, err := e.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.users.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = e.users.Register(ctx, "Other", "ALICE@example.com", "secret2")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name, userName, email, password string
		field                           string
	}{
		{"missing name", "", "a@example.com", "secret1", "name"},
		{"missing email", "A", "", "secret1", "email"},
		{"missing password", "A", "a@example.com", "", "password"},
		{"name too long", string(long), "a@example.com", "secret1", "name"},
		{"bad email", "A", "not-an-email", "secret1", "email"},
		{"display name email", "A", "Bob <bob@example.com>", "secret1", "email"},
		{"short password", "A", "a@example.com", "12345", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.users.Register(context.Background(), tt.userName, tt.email, tt.password)
			require.ErrorIs(t, err, common.ErrorValidation)

			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	registered, _, err := e.users.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	u, token, err := e.users.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.NotEmpty(t, token)

	_, _, err = e.users.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, errUnknown := e.users.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, errUnknown, common.ErrorUnauthorized)
	assert.Equal(t, err.Error(), errUnknown.Error(), "wrong password and unknown email must look the same")

	_, _, err = e.users.Login(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestMeAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, token, err := e.users.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	id, err := e.users.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	me, err := e.users.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Name)

	_, err = e.users.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	ghostToken, err := e.tokens.Issue("ghost")
	require.NoError(t, err)
	_, err = e.users.Authenticate(ctx, ghostToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = e.users.Me(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

// --- fakes for storage failures ---

type fakeRepoManager struct {
	repomanager.RepositoryManager
	repos repomanager.Repositories
}

func (f *fakeRepoManager) Repositories() repomanager.Repositories { return f.repos }

type failingUsersRepo struct {
	usersrepo.Repository
	err error
}

func (f *failingUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.err
}

func (f *failingUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f *failingUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

type stubHasher struct{}

func (stubHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (stubHasher) Compare(d, p string) bool      { return d == "h:"+p }

func TestUserService_StorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("db down")
	rm := &fakeRepoManager{repos: repomanager.Repositories{Users: &failingUsersRepo{err: boom}}}
	s := NewUserService(rm, stubHasher{}, auth.NewJWTIssuer("k", 0), logging.Nop{})
	ctx := context.Background()

	_, _, err := s.Register(ctx, "Alice", "alice@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)

	_, _, err = s.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Me(ctx, "u-1")
	assert.ErrorIs(t, err, boom)
}
