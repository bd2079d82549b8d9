//go:generate mockery --name MemoRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"

	"gorm.io/gorm"
)

// MemoRepository のすべての操作は所有者の識別子で絞り込む。
// 他テナントのメモは「存在しない」と同じ扱いになる。
type MemoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, memo *model.Memo) error
	FindByID(ctx context.Context, db *gorm.DB, owner string, memoID int64) (*model.Memo, error)
	FindByOwner(ctx context.Context, db *gorm.DB, owner string) ([]*model.Memo, error)
	Update(ctx context.Context, tx *gorm.DB, memo *model.Memo, columns []string) error
	Delete(ctx context.Context, tx *gorm.DB, owner string, memoID int64) (bool, error)
}

type gormMemoRepository struct{}

func NewGormMemoRepository() MemoRepository {
	return &gormMemoRepository{}
}

func (r *gormMemoRepository) Create(ctx context.Context, tx *gorm.DB, memo *model.Memo) error {
	logger := middleware.GetLogger(ctx)
	if memo.Tags == nil {
		memo.Tags = []string{}
	}
	result := tx.WithContext(ctx).Create(memo)
	if result.Error != nil {
		logger.Error("Error creating memo in DB", append(dbErrorAttrs(result.Error), "owner", memo.OwnerIdentifier)...)
		return fmt.Errorf("gormMemoRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormMemoRepository) FindByID(ctx context.Context, db *gorm.DB, owner string, memoID int64) (*model.Memo, error) {
	logger := middleware.GetLogger(ctx)
	var memo model.Memo
	result := db.WithContext(ctx).Where("owner_identifier = ? AND id = ?", owner, memoID).First(&memo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding memo by ID in DB", append(dbErrorAttrs(result.Error), "owner", owner, "memo_id", memoID)...)
		return nil, fmt.Errorf("gormMemoRepository.FindByID: %w", result.Error)
	}
	return &memo, nil
}

// FindByOwner は更新日時の降順で返します。同時刻の行は id の降順で順序を固定する。
func (r *gormMemoRepository) FindByOwner(ctx context.Context, db *gorm.DB, owner string) ([]*model.Memo, error) {
	logger := middleware.GetLogger(ctx)
	memos := []*model.Memo{}
	result := db.WithContext(ctx).
		Where("owner_identifier = ?", owner).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&memos)
	if result.Error != nil {
		logger.Error("Error finding memos by owner in DB", append(dbErrorAttrs(result.Error), "owner", owner)...)
		return nil, fmt.Errorf("gormMemoRepository.FindByOwner: %w", result.Error)
	}
	return memos, nil
}

// Update は memo の (OwnerIdentifier, ID) に一致する行の columns だけを書き換えます。
// 構造体で渡すので tags はシリアライザを通して保存される。
func (r *gormMemoRepository) Update(ctx context.Context, tx *gorm.DB, memo *model.Memo, columns []string) error {
	logger := middleware.GetLogger(ctx)
	if len(columns) == 0 {
		return nil
	}
	if memo.Tags == nil {
		memo.Tags = []string{}
	}
	result := tx.WithContext(ctx).Model(&model.Memo{}).
		Where("owner_identifier = ? AND id = ?", memo.OwnerIdentifier, memo.ID).
		Select(columns).
		Updates(memo)
	if result.Error != nil {
		logger.Error("Error updating memo in DB", append(dbErrorAttrs(result.Error), "owner", memo.OwnerIdentifier, "memo_id", memo.ID)...)
		return fmt.Errorf("gormMemoRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormMemoRepository) Delete(ctx context.Context, tx *gorm.DB, owner string, memoID int64) (bool, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("owner_identifier = ? AND id = ?", owner, memoID).Delete(&model.Memo{})
	if result.Error != nil {
		logger.Error("Error deleting memo in DB", append(dbErrorAttrs(result.Error), "owner", owner, "memo_id", memoID)...)
		return false, fmt.Errorf("gormMemoRepository.Delete: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
