package auth

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
)

type RefreshOutput struct {
	User  *model.User `json:"user"`
	Token AccessToken `json:"token"`
}

// リフレッシュトークンのローテーションとログアウト
type SessionUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewSessionUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *SessionUsecase {
	return &SessionUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// 使用済みトークンが再送されたら盗用とみなし、そのユーザーのトークンを全て失効させる
func (u *SessionUsecase) Refresh(ctx context.Context, plain string, userAgent string) (RefreshOutput, LoginSideEffect, error) {
	var out RefreshOutput
	if plain == "" {
		return out, LoginSideEffect{}, usecase.Unauthorized("missing refresh token")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(plain))
	if errors.Is(err, repository.ErrNotFound) {
		return out, LoginSideEffect{}, usecase.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return out, LoginSideEffect{}, usecase.Internal(err)
	}

	now := u.clock.Now()
	if rt.RevokedAt != nil {
		return out, LoginSideEffect{}, usecase.Unauthorized("invalid refresh token")
	}
	if rt.UsedAt != nil {
		if err := u.rtRepo.DeleteAllByUserID(ctx, rt.UserID); err != nil {
			return out, LoginSideEffect{}, usecase.Internal(err)
		}
		return out, LoginSideEffect{}, usecase.Unauthorized("refresh token reused")
	}
	if !rt.ExpiresAt.After(now) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return out, LoginSideEffect{}, usecase.Unauthorized("refresh token expired")
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return out, LoginSideEffect{}, usecase.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return out, LoginSideEffect{}, usecase.Internal(err)
	}
	if !user.IsActive {
		return out, LoginSideEffect{}, usecase.Forbidden("account is disabled")
	}

	// 同時に同じトークンで来た場合は片方だけが通る
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
			return out, LoginSideEffect{}, usecase.Unauthorized("refresh token reused")
		}
		return out, LoginSideEffect{}, usecase.Internal(err)
	}

	token, side, err := issueTokens(ctx, u.rtRepo, u.issuer, u.idGen, u.refreshTTL, user, userAgent, now)
	if err != nil {
		return out, LoginSideEffect{}, err
	}

	out.User = user
	out.Token = token
	return out, side, nil
}

// トークンが無い・既に消えている場合も成功扱い
func (u *SessionUsecase) Logout(ctx context.Context, plain string) error {
	if plain == "" {
		return nil
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(plain))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return usecase.Internal(err)
	}

	if err := u.rtRepo.DeleteByID(ctx, rt.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return usecase.Internal(err)
	}
	return nil
}
