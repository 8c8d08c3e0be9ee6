package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type UserListOutput struct {
	Items      []model.User `json:"items"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
	TotalPages int          `json:"total_pages"`
}

type AdminUserUsecase struct {
	users         repo.UserRepository
	refreshTokens repo.RefreshTokenRepository
	auditLogs     repo.AuditLogRepository
	tx            repo.TransactionManager
}

// DI
func NewAdminUserUsecase(users repo.UserRepository, refreshTokens repo.RefreshTokenRepository, auditLogs repo.AuditLogRepository, tx repo.TransactionManager) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, refreshTokens: refreshTokens, auditLogs: auditLogs, tx: tx}
}

func (u *AdminUserUsecase) List(ctx context.Context, page, perPage int) (UserListOutput, error) {
	page, perPage, err := pageParams(page, perPage, 20)
	if err != nil {
		return UserListOutput{}, err
	}

	items, total, err := u.users.List(ctx, page, perPage)
	if err != nil {
		return UserListOutput{}, Internal(err)
	}
	if items == nil {
		items = []model.User{}
	}
	return UserListOutput{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

// 無効化したユーザーは発行済みトークンも使えなくする。自分自身は無効化できない
func (u *AdminUserUsecase) SetActive(ctx context.Context, adminUserID, userID int64, active bool) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if userID <= 0 {
		return Validation("invalid user id")
	}
	if userID == adminUserID && !active {
		return Validation("cannot deactivate yourself")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("user not found")
		}
		if err != nil {
			return err
		}
		before := user.IsActive
		if before == active {
			return nil
		}

		user.IsActive = active
		if err := r.Users().Update(ctx, user); err != nil {
			return err
		}
		if !active {
			if err := r.Users().IncrementTokenVersion(ctx, userID); err != nil {
				return err
			}
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionSetUserActive, model.AuditResourceUser, userID,
			map[string]bool{"is_active": before},
			map[string]bool{"is_active": active},
		)
	})
	if err != nil {
		return wrapInternal(err)
	}

	if !active {
		if err := u.refreshTokens.DeleteAllByUserID(ctx, userID); err != nil {
			return Internal(err)
		}
	}
	return nil
}

// token_versionを上げてアクセストークンを失効させ、リフレッシュトークンも全削除
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, adminUserID, userID int64) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if userID <= 0 {
		return Validation("invalid user id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Users().IncrementTokenVersion(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("user not found")
		}
		if err != nil {
			return err
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionForceLogout, model.AuditResourceUser, userID, nil, nil)
	})
	if err != nil {
		return wrapInternal(err)
	}

	if err := u.refreshTokens.DeleteAllByUserID(ctx, userID); err != nil {
		return Internal(err)
	}
	return nil
}

type AuditLogQuery struct {
	ResourceType string
	ResourceID   int64
	Limit        int
	Offset       int
}

// 新しい順
func (u *AdminUserUsecase) ListAuditLogs(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error) {
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.Limit < 0 || q.Limit > 200 || q.Offset < 0 {
		return nil, Validation("invalid limit or offset")
	}

	f := repo.AuditLogFilter{Limit: q.Limit, Offset: q.Offset}
	switch rt := model.AuditResourceType(q.ResourceType); rt {
	case "":
	case model.AuditResourceProduct, model.AuditResourceOrder, model.AuditResourceUser:
		f.ResourceType = &rt
	default:
		return nil, Validation("invalid resource_type")
	}
	if q.ResourceID > 0 {
		id := q.ResourceID
		f.ResourceID = &id
	}

	logs, err := u.auditLogs.List(ctx, f)
	if err != nil {
		return nil, Internal(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
