package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	// ユーザー名またはメール
	Login     string `json:"login" validate:"required"`
	Password  string `json:"password" validate:"required"`
	UserAgent string `json:"-"`
	// 匿名カートのセッションID。あればログイン後にマージする
	SessionID string `json:"-"`
}

type AccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  *model.User `json:"user"`
	Token AccessToken `json:"token"`
}

// handlerがCookieに詰める値
type LoginSideEffect struct {
	PlainRefreshToken string
	RefreshExpiresAt  time.Time
	// カートのマージ失敗はログインを失敗させない
	CartMergeErr error
}

type LoginUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	verifier   PasswordVerifier
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	carts      CartMerger
	refreshTTL time.Duration
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	carts CartMerger,
	refreshTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		verifier:   verifier,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		carts:      carts,
		refreshTTL: refreshTTL,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, LoginSideEffect, error) {
	var (
		out  LoginOutput
		side LoginSideEffect
	)

	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return out, side, usecase.Validation("login and password are required")
	}

	user, err := u.userRepo.FindByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return out, side, usecase.Unauthorized("invalid credentials")
	}
	if err != nil {
		return out, side, usecase.Internal(err)
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return out, side, usecase.Unauthorized("invalid credentials")
	}
	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, side, usecase.Forbidden("account is disabled")
	}

	now := u.clock.Now()
	token, side, err := issueTokens(ctx, u.rtRepo, u.issuer, u.idGen, u.refreshTTL, user, in.UserAgent, now)
	if err != nil {
		return out, side, err
	}

	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, side, usecase.Internal(err)
	}

	if u.carts != nil && in.SessionID != "" {
		side.CartMergeErr = u.carts.MergeSessionCart(ctx, in.SessionID, user.ID)
	}

	out.User = user
	out.Token = token
	return out, side, nil
}

// アクセストークンと新しいリフレッシュトークンを発行して保存する
func issueTokens(
	ctx context.Context,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	refreshTTL time.Duration,
	user *model.User,
	userAgent string,
	now time.Time,
) (AccessToken, LoginSideEffect, error) {
	access, exp, err := issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return AccessToken{}, LoginSideEffect{}, usecase.Internal(err)
	}

	plain, hash, err := newRefreshToken()
	if err != nil {
		return AccessToken{}, LoginSideEffect{}, usecase.Internal(err)
	}

	rt := &model.RefreshToken{
		ID:        idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hash,
		UserAgent: userAgent,
		ExpiresAt: now.Add(refreshTTL),
		CreatedAt: now,
	}
	if err := rtRepo.Create(ctx, rt); err != nil {
		return AccessToken{}, LoginSideEffect{}, usecase.Internal(err)
	}

	return AccessToken{
			AccessToken:  access,
			ExpiresIn:    int(exp.Sub(now).Seconds()),
			TokenVersion: user.TokenVersion,
		}, LoginSideEffect{
			PlainRefreshToken: plain,
			RefreshExpiresAt:  rt.ExpiresAt,
		}, nil
}
