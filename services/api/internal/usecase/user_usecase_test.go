package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"cognition-berries/pkg/identity"
	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserUseCase() (UserUseCase, *MockUserRepository, *MockEmailChecker, *MockObjectStore) {
	repo := new(MockUserRepository)
	checker := new(MockEmailChecker)
	store := new(MockObjectStore)
	return NewUserUseCase(repo, checker, store, logger.NewNop()), repo, checker, store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates student", func(t *testing.T) {
		uc, repo, checker, _ := newUserUseCase()
		checker.On("Check", ctx, "ada@example.com").Return(nil)
		repo.On("ExistsByEmailOrUID", ctx, "ada@example.com", "uid-1").Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Role == entity.RoleStudent && u.Email == "ada@example.com" && u.Name == "Ada"
		})).Return(&entity.User{UID: "uid-1", Email: "ada@example.com", Role: entity.RoleStudent}, nil)

		user, err := uc.Register(ctx, "uid-1", " Ada@Example.com ", " Ada ")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleStudent, user.Role)
	})

	t.Run("rejects domain without mail server", func(t *testing.T) {
		uc, repo, checker, _ := newUserUseCase()
		checker.On("Check", ctx, "ada@nowhere.invalid").Return(errors.New("no mx"))

		_, err := uc.Register(ctx, "", "ada@nowhere.invalid", "Ada")
		assert.ErrorIs(t, err, entity.ErrInvalidEmailDomain)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("conflict", func(t *testing.T) {
		uc, repo, checker, _ := newUserUseCase()
		checker.On("Check", ctx, "ada@example.com").Return(nil)
		repo.On("ExistsByEmailOrUID", ctx, "ada@example.com", "").Return(true, nil)

		_, err := uc.Register(ctx, "", "ada@example.com", "Ada")
		assert.ErrorIs(t, err, entity.ErrUserExists)
	})
}

func TestResolveRole(t *testing.T) {
	uc, repo, _, _ := newUserUseCase()
	ctx := context.Background()

	repo.On("UpsertByUID", ctx, "uid-1", "ada@example.com", "Ada").Return(&entity.User{Role: entity.RoleAdmin}, nil)
	repo.On("UpsertByUID", ctx, "uid-2", "", "").Return(&entity.User{}, nil)

	role, err := uc.ResolveRole(ctx, &identity.Identity{UID: "uid-1", Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	role, err = uc.ResolveRole(ctx, &identity.Identity{UID: "uid-2"})
	require.NoError(t, err)
	assert.Equal(t, "student", role)
}

func TestUpdateUser_ValidatesRole(t *testing.T) {
	uc, repo, _, _ := newUserUseCase()
	ctx := context.Background()

	bad := "owner"
	_, err := uc.UpdateUser(ctx, "ada@example.com", nil, &bad)
	assert.ErrorIs(t, err, entity.ErrInvalidRole)

	good := "admin"
	repo.On("UpdateByEmail", ctx, "ada@example.com", mock.MatchedBy(func(f persistent.UserUpdate) bool {
		return f.Role != nil && *f.Role == entity.RoleAdmin && f.Name == nil
	})).Return(&entity.User{Email: "ada@example.com", Role: entity.RoleAdmin}, nil)

	user, err := uc.UpdateUser(ctx, "ada@example.com", nil, &good)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestUploadAvatar(t *testing.T) {
	uc, repo, _, store := newUserUseCase()
	ctx := context.Background()

	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	store.On("Put", ctx, "avatars/uid_1.jpg", mock.Anything, "image/jpeg").Return("/uploads/avatars/uid_1.jpg", nil)
	repo.On("UpdateByUID", ctx, "uid/1", mock.MatchedBy(func(f persistent.UserUpdate) bool {
		return f.AvatarURL != nil && *f.AvatarURL == "/uploads/avatars/uid_1.jpg"
	})).Return(&entity.User{UID: "uid/1", AvatarURL: "/uploads/avatars/uid_1.jpg"}, nil)

	user, err := uc.UploadAvatar(ctx, "uid/1", &buf)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/uid_1.jpg", user.AvatarURL)
	store.AssertExpectations(t)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	uc, _, _, store := newUserUseCase()

	_, err := uc.UploadAvatar(context.Background(), "uid-1", bytes.NewReader([]byte("definitely not a picture")))
	assert.ErrorIs(t, err, entity.ErrInvalidAvatar)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
