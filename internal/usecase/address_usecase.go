package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"
)

type AddressInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Region     string `json:"region" validate:"required,max=100"`
	City       string `json:"city" validate:"required,max=100"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"max=255"`
}

func (in AddressInput) normalize() AddressInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Region = strings.TrimSpace(in.Region)
	in.City = strings.TrimSpace(in.City)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.Line2 = strings.TrimSpace(in.Line2)
	return in
}

type AddressUsecase struct {
	addresses repo.AddressRepository
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, Unauthorized("login required")
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	if list == nil {
		list = []model.Address{}
	}
	return list, nil
}

// 最初の1件は自動的にデフォルトになる
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, Unauthorized("login required")
	}
	in = in.normalize()
	if err := validator.Struct(in); err != nil {
		return model.Address{}, Invalid(err)
	}

	existing, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return model.Address{}, Internal(err)
	}

	now := time.Now()
	created, err := u.addresses.Create(ctx, model.Address{
		UserID:     userID,
		Name:       in.Name,
		Phone:      in.Phone,
		PostalCode: in.PostalCode,
		Region:     in.Region,
		City:       in.City,
		Line1:      in.Line1,
		Line2:      in.Line2,
		IsDefault:  len(existing) == 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return model.Address{}, Internal(err)
	}
	return created, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}
	in = in.normalize()
	if err := validator.Struct(in); err != nil {
		return Invalid(err)
	}

	err := u.addresses.Update(ctx, model.Address{
		ID:         addressID,
		Name:       in.Name,
		Phone:      in.Phone,
		PostalCode: in.PostalCode,
		Region:     in.Region,
		City:       in.City,
		Line1:      in.Line1,
		Line2:      in.Line2,
		UpdatedAt:  time.Now(),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("address not found")
	}
	if err != nil {
		return Internal(err)
	}
	return nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}

	err := u.addresses.Delete(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("address not found")
	}
	if err != nil {
		return Internal(err)
	}
	return nil
}

// user内でdefaultは1つ
func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}

	err := u.addresses.SetDefault(ctx, userID, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("address not found")
	}
	if err != nil {
		return Internal(err)
	}
	return nil
}

// 他人の住所は存在しない扱い
func (u *AddressUsecase) owned(ctx context.Context, userID, addressID int64) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, Unauthorized("login required")
	}
	if addressID <= 0 {
		return model.Address{}, Validation("invalid address id")
	}

	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && a.UserID != userID) {
		return model.Address{}, NotFound("address not found")
	}
	if err != nil {
		return model.Address{}, Internal(err)
	}
	return a, nil
}
