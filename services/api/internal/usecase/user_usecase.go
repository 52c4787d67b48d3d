package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cognition-berries/pkg/identity"
	"cognition-berries/pkg/imaging"
	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type UserUseCase interface {
	Register(ctx context.Context, uid, email, name string) (*entity.User, error)
	ResolveRole(ctx context.Context, id *identity.Identity) (string, error)
	GetMe(ctx context.Context, uid string) (*entity.User, error)
	UpdateMe(ctx context.Context, uid, name string) (*entity.User, error)
	UploadAvatar(ctx context.Context, uid string, r io.Reader) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	GetUser(ctx context.Context, email string) (*entity.User, error)
	UpdateUser(ctx context.Context, email string, name, role *string) (*entity.User, error)
	DeleteUser(ctx context.Context, email string) error
}

type userUseCase struct {
	userRepo     persistent.UserRepository
	emailChecker EmailChecker
	avatars      ObjectStore
	logger       *logger.Logger
}

func NewUserUseCase(
	userRepo persistent.UserRepository,
	emailChecker EmailChecker,
	avatars ObjectStore,
	logger *logger.Logger,
) UserUseCase {
	return &userUseCase{
		userRepo:     userRepo,
		emailChecker: emailChecker,
		avatars:      avatars,
		logger:       logger,
	}
}

func (uc *userUseCase) Register(ctx context.Context, uid, email, name string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := uc.emailChecker.Check(ctx, email); err != nil {
		uc.logger.Debug("Rejected registration for %s: %v", email, err)
		return nil, entity.ErrInvalidEmailDomain
	}

	exists, err := uc.userRepo.ExistsByEmailOrUID(ctx, email, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, entity.ErrUserExists
	}

	user, err := uc.userRepo.Create(ctx, &entity.User{
		UID:   uid,
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  entity.RoleStudent,
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("User %s registered", user.Email)
	return user, nil
}

// ResolveRole satisfies middleware.RoleResolver.
func (uc *userUseCase) ResolveRole(ctx context.Context, id *identity.Identity) (string, error) {
	user, err := uc.userRepo.UpsertByUID(ctx, id.UID, id.Email, id.Name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user %s: %w", id.UID, err)
	}
	if user.Role == "" {
		return string(entity.RoleStudent), nil
	}
	return string(user.Role), nil
}

func (uc *userUseCase) GetMe(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByUID(ctx, uid)
}

func (uc *userUseCase) UpdateMe(ctx context.Context, uid, name string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	return uc.userRepo.UpdateByUID(ctx, uid, persistent.UserUpdate{Name: &name})
}

func (uc *userUseCase) UploadAvatar(ctx context.Context, uid string, r io.Reader) (*entity.User, error) {
	normalized, err := imaging.NormalizeAvatar(r)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) || errors.Is(err, imaging.ErrUnsupported) {
			return nil, entity.ErrInvalidAvatar
		}
		return nil, err
	}

	url, err := uc.avatars.Put(ctx, avatarKey(uid), normalized, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	user, err := uc.userRepo.UpdateByUID(ctx, uid, persistent.UserUpdate{AvatarURL: &url})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Avatar updated for user %s", uid)
	return user, nil
}

func avatarKey(uid string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, uid)
	return "avatars/" + safe + ".jpg"
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.List(ctx)
}

func (uc *userUseCase) GetUser(ctx context.Context, email string) (*entity.User, error) {
	return uc.userRepo.GetByEmail(ctx, email)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, email string, name, role *string) (*entity.User, error) {
	fields := persistent.UserUpdate{Name: name}
	if role != nil {
		r := entity.UserRole(*role)
		if r != entity.RoleStudent && r != entity.RoleAdmin {
			return nil, entity.ErrInvalidRole
		}
		fields.Role = &r
	}

	user, err := uc.userRepo.UpdateByEmail(ctx, email, fields)
	if err != nil {
		return nil, err
	}
	if role != nil {
		uc.logger.Info("User %s now has role %s", user.Email, user.Role)
	}
	return user, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, email string) error {
	if err := uc.userRepo.DeleteByEmail(ctx, email); err != nil {
		return err
	}
	uc.logger.Info("User %s deleted", email)
	return nil
}
