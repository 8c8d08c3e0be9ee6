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

type ProfileInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address" validate:"max=500"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,notweak,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type ProfileUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
}

func NewProfileUsecase(userRepo repository.UserRepository, rtRepo repository.RefreshTokenRepository, hasher PasswordHasher, verifier PasswordVerifier) *ProfileUsecase {
	return &ProfileUsecase{userRepo: userRepo, rtRepo: rtRepo, hasher: hasher, verifier: verifier}
}

func (u *ProfileUsecase) Get(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, usecase.Unauthorized("login required")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, usecase.NotFound("user not found")
	}
	if err != nil {
		return nil, usecase.Internal(err)
	}
	return user, nil
}

// メールを変える場合は他ユーザーと重複しないこと
func (u *ProfileUsecase) Update(ctx context.Context, userID int64, in ProfileInput) (*model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	user, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, usecase.Invalid(err)
	}

	if in.Email != user.Email {
		other, err := u.userRepo.FindByEmail(ctx, in.Email)
		if err == nil && other.ID != user.ID {
			return nil, usecase.Conflict("email already exists")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, usecase.Internal(err)
		}
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	user.Phone = in.Phone
	user.Address = in.Address

	if err := u.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, usecase.Conflict("email already exists")
		}
		return nil, usecase.Internal(err)
	}
	return user, nil
}

// 変更後は発行済みトークンを全て無効にする
func (u *ProfileUsecase) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	user, err := u.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := validator.Struct(in); err != nil {
		return usecase.Invalid(err)
	}
	if !u.verifier.Verify(in.CurrentPassword, user.PasswordHash) {
		return usecase.Invalid(validator.FieldErrors{"current_password": "is incorrect"})
	}

	hashed, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return usecase.Internal(err)
	}
	user.PasswordHash = hashed
	if err := u.userRepo.Update(ctx, user); err != nil {
		return usecase.Internal(err)
	}

	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		return usecase.Internal(err)
	}
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return usecase.Internal(err)
	}
	return nil
}
