package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"
)

// 会員登録の入力
type RegisterUserInput struct {
	Username        string `json:"username" validate:"required,min=3,max=80,username"`
	Email           string `json:"email" validate:"required,email,max=120"`
	Password        string `json:"password" validate:"required,min=8,max=72,notweak"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	Phone           string `json:"phone" validate:"omitempty,phone"`
	Address         string `json:"address" validate:"max=500"`
}

type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	clock    Clock
}

// DI
func NewRegisterUserUsecase(userRepo repository.UserRepository, hasher PasswordHasher, clock Clock) *RegisterUserUsecase {
	return &RegisterUserUsecase{userRepo: userRepo, hasher: hasher, clock: clock}
}

// 会員登録実行。ロールはUSER固定
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if err := validator.Struct(in); err != nil {
		return nil, usecase.Invalid(err)
	}

	if err := u.ensureUnique(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, usecase.Internal(err)
	}

	now := u.clock.Now()
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		// 同時登録で一意制約に負けた
		if errors.Is(err, repository.ErrConflict) {
			return nil, usecase.Conflict("username or email already exists")
		}
		return nil, usecase.Internal(err)
	}
	return user, nil
}

func (u *RegisterUserUsecase) ensureUnique(ctx context.Context, username, email string) error {
	if _, err := u.userRepo.FindByUsername(ctx, username); err == nil {
		return usecase.Conflict("username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return usecase.Internal(err)
	}

	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return usecase.Conflict("email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return usecase.Internal(err)
	}
	return nil
}
