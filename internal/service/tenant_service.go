// internal/service/tenant_service.go
package service

import (
	"context"
	"errors"
	"time"

	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/repository"

	"gorm.io/gorm"
)

// TenantService はテナントの自動登録・参照・集計を扱います。
// AutoRegister がテナントを作る唯一の経路。
type TenantService interface {
	AutoRegister(ctx context.Context, identifier string, hints *model.ProfileHints) (*model.Tenant, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error)
	UpdateProfile(ctx context.Context, identifier string, update *model.ProfileUpdate) (*model.Tenant, error)
	RefreshMemoCount(ctx context.Context, identifier string) error
	ComputeStats(ctx context.Context, identifier string) (*model.TenantStats, error)
}

type tenantService struct {
	db         *gorm.DB
	tenantRepo repository.TenantRepository
	now        func() time.Time
}

type TenantServiceOption func(*tenantService)

// WithTenantClock は last_active_at に使う時計を差し替えます (テスト用)。
func WithTenantClock(now func() time.Time) TenantServiceOption {
	return func(s *tenantService) { s.now = now }
}

func NewTenantService(db *gorm.DB, repo repository.TenantRepository, opts ...TenantServiceOption) TenantService {
	s := &tenantService{db: db, tenantRepo: repo, now: utcNow}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoRegister は未登録なら作成し、登録済みなら空でないヒントだけをマージします。
// どちらの場合も last_active_at を更新し、結果のテナントを返す。
func (s *tenantService) AutoRegister(ctx context.Context, identifier string, hints *model.ProfileHints) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	if !model.IsValidIdentifier(identifier) {
		return nil, model.NewAppError("INVALID_IDENTITY", "ユーザーIDの形式が正しくありません。", "userId", model.ErrInvalidIdentity)
	}
	hints = hints.Compact()
	if hints == nil {
		hints = &model.ProfileHints{}
	}

	var tenant *model.Tenant
	now := s.now()
	// 書き込みはクライアントの切断で中断させない
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.tenantRepo.CreateIfAbsent(ctx, tx, &model.Tenant{
			Identifier:           identifier,
			Channel:              model.DeriveChannel(identifier),
			DisplayName:          hints.DisplayName,
			AvatarReference:      hints.AvatarReference,
			ExternalSubject:      hints.ExternalSubject,
			ExternalSessionToken: hints.ExternalSessionToken,
			LastActiveAt:         now,
		})
		if err != nil {
			return err
		}
		if !created {
			if err := s.tenantRepo.MergeProfile(ctx, tx, identifier, hints, now); err != nil {
				return err
			}
		}
		tenant, err = s.tenantRepo.FindByIdentifier(ctx, tx, identifier)
		if err == nil && created {
			logger.Info("Tenant auto-registered", "identifier", identifier, "channel", tenant.Channel)
		}
		return err
	})
	if err != nil {
		logger.Error("Failed to auto-register tenant", "identifier", identifier, "error", err)
		return nil, storeError(err)
	}
	return tenant, nil
}

func (s *tenantService) FindByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	tenant, err := s.tenantRepo.FindByIdentifier(ctx, s.db, identifier)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to find tenant", "identifier", identifier, "error", err)
		return nil, storeError(err)
	}
	return tenant, nil
}

// UpdateProfile は指定された値で表示名とアバターを上書きします (nil も書き込む)。
// 少なくとも一項目あるかの検証は呼び出し側の責務。
func (s *tenantService) UpdateProfile(ctx context.Context, identifier string, update *model.ProfileUpdate) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)
	if update == nil {
		update = &model.ProfileUpdate{}
	}

	var tenant *model.Tenant
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.UpdateProfile(ctx, tx, identifier, update); err != nil {
			return err
		}
		var err error
		tenant, err = s.tenantRepo.FindByIdentifier(ctx, tx, identifier)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to update tenant profile", "identifier", identifier, "error", err)
		return nil, storeError(err)
	}

	logger.Info("Tenant profile updated", "identifier", identifier)
	return tenant, nil
}

// RefreshMemoCount は memo_count を実際のメモ件数に合わせます。単独で呼ぶ場合の入口で、
// メモの作成・削除では MemoService が同じトランザクション内で行う。
func (s *tenantService) RefreshMemoCount(ctx context.Context, identifier string) error {
	logger := middleware.GetLogger(ctx)

	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.LockForUpdate(ctx, tx, identifier); err != nil {
			return err
		}
		return s.tenantRepo.RefreshMemoCount(ctx, tx, identifier)
	})
	if err != nil {
		logger.Error("Failed to refresh memo count", "identifier", identifier, "error", err)
		return storeError(err)
	}
	return nil
}

// ComputeStats はメモの集計を返します。メモが無い、または未知の識別子でもエラーにせずすべて0を返す。
func (s *tenantService) ComputeStats(ctx context.Context, identifier string) (*model.TenantStats, error) {
	logger := middleware.GetLogger(ctx)

	stats, err := s.tenantRepo.ComputeStats(ctx, s.db, identifier)
	if err != nil {
		logger.Error("Failed to compute tenant stats", "identifier", identifier, "error", err)
		return nil, storeError(err)
	}
	return stats, nil
}
