//go:generate mockery --name TenantRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TenantRepository interface {
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, tenant *model.Tenant) (bool, error)
	MergeProfile(ctx context.Context, tx *gorm.DB, identifier string, hints *model.ProfileHints, activeAt time.Time) error
	FindByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*model.Tenant, error)
	UpdateProfile(ctx context.Context, tx *gorm.DB, identifier string, update *model.ProfileUpdate) error
	LockForUpdate(ctx context.Context, tx *gorm.DB, identifier string) error
	RefreshMemoCount(ctx context.Context, tx *gorm.DB, identifier string) error
	ComputeStats(ctx context.Context, db *gorm.DB, identifier string) (*model.TenantStats, error)
}

type gormTenantRepository struct{}

func NewGormTenantRepository() TenantRepository {
	return &gormTenantRepository{}
}

// CreateIfAbsent は識別子が未登録なら行を挿入します。既に存在する場合は何もせず false を返す。
func (r *gormTenantRepository) CreateIfAbsent(ctx context.Context, tx *gorm.DB, tenant *model.Tenant) (bool, error) {
	logger := middleware.GetLogger(ctx)

	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "identifier"}}, DoNothing: true}).
		Create(tenant)
	if result.Error != nil {
		logger.Error("Error inserting tenant in DB", append(dbErrorAttrs(result.Error), "identifier", tenant.Identifier)...)
		return false, fmt.Errorf("gormTenantRepository.CreateIfAbsent: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MergeProfile は空でないヒントだけを書き込み (coalesce)、last_active_at は必ず更新します。
// 行の存在は同じトランザクションの CreateIfAbsent で確定しているので、更新件数は見ない。
// MySQL は値が変わらなかった行を件数に含めない。
func (r *gormTenantRepository) MergeProfile(ctx context.Context, tx *gorm.DB, identifier string, hints *model.ProfileHints, activeAt time.Time) error {
	logger := middleware.GetLogger(ctx)

	updates := map[string]interface{}{"last_active_at": activeAt}
	if hints = hints.Compact(); hints != nil {
		if hints.DisplayName != nil {
			updates["display_name"] = *hints.DisplayName
		}
		if hints.AvatarReference != nil {
			updates["avatar_reference"] = *hints.AvatarReference
		}
		if hints.ExternalSubject != nil {
			updates["external_subject"] = *hints.ExternalSubject
		}
		if hints.ExternalSessionToken != nil {
			updates["external_session_token"] = *hints.ExternalSessionToken
		}
	}

	result := tx.WithContext(ctx).Model(&model.Tenant{}).Where("identifier = ?", identifier).Updates(updates)
	if result.Error != nil {
		logger.Error("Error merging tenant profile in DB", append(dbErrorAttrs(result.Error), "identifier", identifier)...)
		return fmt.Errorf("gormTenantRepository.MergeProfile: %w", result.Error)
	}
	return nil
}

func (r *gormTenantRepository) FindByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)
	var tenant model.Tenant
	result := db.WithContext(ctx).Where("identifier = ?", identifier).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding tenant by identifier in DB", append(dbErrorAttrs(result.Error), "identifier", identifier)...)
		return nil, fmt.Errorf("gormTenantRepository.FindByIdentifier: %w", result.Error)
	}
	return &tenant, nil
}

// UpdateProfile は表示名とアバターを nil も含めてそのまま上書きします。
// 存在確認は更新件数ではなく事前の件数で行う (MySQL は値が変わらない更新を0件と数える)。
func (r *gormTenantRepository) UpdateProfile(ctx context.Context, tx *gorm.DB, identifier string, update *model.ProfileUpdate) error {
	logger := middleware.GetLogger(ctx)

	var count int64
	if err := tx.WithContext(ctx).Model(&model.Tenant{}).Where("identifier = ?", identifier).Count(&count).Error; err != nil {
		logger.Error("Error checking tenant existence in DB", append(dbErrorAttrs(err), "identifier", identifier)...)
		return fmt.Errorf("gormTenantRepository.UpdateProfile: %w", err)
	}
	if count == 0 {
		return model.ErrNotFound
	}

	updates := map[string]interface{}{
		"display_name":     nullableString(update.DisplayName),
		"avatar_reference": nullableString(update.AvatarReference),
	}
	result := tx.WithContext(ctx).Model(&model.Tenant{}).Where("identifier = ?", identifier).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating tenant profile in DB", append(dbErrorAttrs(result.Error), "identifier", identifier)...)
		return fmt.Errorf("gormTenantRepository.UpdateProfile: %w", result.Error)
	}
	return nil
}

// LockForUpdate はトランザクション終了までテナント行をロックします。
// 同じテナントへのメモ作成・削除を直列化し、件数の再計算が必ず最新の行を数えるようにする。
// SQLite は書き込みがDB単位で直列化されるので何もしない。
func (r *gormTenantRepository) LockForUpdate(ctx context.Context, tx *gorm.DB, identifier string) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	logger := middleware.GetLogger(ctx)

	var locked []string
	result := tx.WithContext(ctx).Model(&model.Tenant{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("identifier = ?", identifier).
		Pluck("identifier", &locked)
	if result.Error != nil {
		logger.Error("Error locking tenant row", append(dbErrorAttrs(result.Error), "identifier", identifier)...)
		return fmt.Errorf("gormTenantRepository.LockForUpdate: %w", result.Error)
	}
	return nil
}

// RefreshMemoCount は memo_count を実際の行数から再計算します。何度呼んでも結果は同じ。
func (r *gormTenantRepository) RefreshMemoCount(ctx context.Context, tx *gorm.DB, identifier string) error {
	logger := middleware.GetLogger(ctx)

	result := tx.WithContext(ctx).Model(&model.Tenant{}).Where("identifier = ?", identifier).
		Update("memo_count", gorm.Expr("(SELECT COUNT(*) FROM memos WHERE memos.owner_identifier = ?)", identifier))
	if result.Error != nil {
		logger.Error("Error refreshing memo count in DB", append(dbErrorAttrs(result.Error), "identifier", identifier)...)
		return fmt.Errorf("gormTenantRepository.RefreshMemoCount: %w", result.Error)
	}
	return nil
}

// ComputeStats はテナントのメモを完了状態・優先度で集計します。メモが無ければすべて0。
func (r *gormTenantRepository) ComputeStats(ctx context.Context, db *gorm.DB, identifier string) (*model.TenantStats, error) {
	logger := middleware.GetLogger(ctx)

	var stats model.TenantStats
	result := db.WithContext(ctx).Model(&model.Memo{}).
		Select(`COUNT(*) AS total,
			COUNT(CASE WHEN completion_status = ? THEN 1 END) AS completed,
			COUNT(CASE WHEN completion_status = ? THEN 1 END) AS pending,
			COUNT(CASE WHEN priority = ? THEN 1 END) AS urgent`,
			model.StatusDone, model.StatusOpen, model.PriorityUrgent).
		Where("owner_identifier = ?", identifier).
		Scan(&stats)
	if result.Error != nil {
		logger.Error("Error computing tenant stats in DB", append(dbErrorAttrs(result.Error), "identifier", identifier)...)
		return nil, fmt.Errorf("gormTenantRepository.ComputeStats: %w", result.Error)
	}
	return &stats, nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
