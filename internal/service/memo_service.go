// internal/service/memo_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go_memo_keep/internal/metrics"
	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/repository"
	"go_memo_keep/internal/webutil"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// MemoService はメモのCRUDを扱います。すべての操作は所有者の識別子で絞り込まれる。
type MemoService interface {
	List(ctx context.Context, owner string) ([]*model.Memo, error)
	GetByID(ctx context.Context, id int64, owner string) (*model.Memo, error)
	Create(ctx context.Context, owner, title, body string, opts model.MemoOptions) (*model.Memo, error)
	Update(ctx context.Context, id int64, owner, title, body string, opts model.MemoOptions) (*model.Memo, error)
	Delete(ctx context.Context, id int64, owner string) (bool, error)
	ValidateMemo(title, body string) []string
}

type memoService struct {
	db         *gorm.DB
	memoRepo   repository.MemoRepository
	tenantRepo repository.TenantRepository
	metrics    *metrics.Metrics
	now        func() time.Time
}

type MemoServiceOption func(*memoService)

// WithMemoClock は created_at / updated_at に使う時計を差し替えます (テスト用)。
func WithMemoClock(now func() time.Time) MemoServiceOption {
	return func(s *memoService) { s.now = now }
}

func NewMemoService(db *gorm.DB, memoRepo repository.MemoRepository, tenantRepo repository.TenantRepository, m *metrics.Metrics, opts ...MemoServiceOption) MemoService {
	s := &memoService{
		db:         db,
		memoRepo:   memoRepo,
		tenantRepo: tenantRepo,
		metrics:    m,
		now:        utcNow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// memoInput はタイトルと本文の検証ルール
type memoInput struct {
	Title string `json:"title" validate:"required,max=50"`
	Body  string `json:"body" validate:"required,max=1000"`
}

// ValidateMemo はタイトルと本文を前後の空白を除いて検証し、違反メッセージの一覧を返します。
// 空なら有効。二つのルールは独立に評価される。
func (s *memoService) ValidateMemo(title, body string) []string {
	err := webutil.Validator.Struct(memoInput{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	})
	if err == nil {
		return []string{}
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return webutil.TranslateValidationErrors(validationErrors)
	}
	return []string{err.Error()}
}

func validateOptions(opts model.MemoOptions) []string {
	var violations []string
	if p := opts.Priority; p != nil && (*p < model.PriorityNormal || *p > model.PriorityUrgent) {
		violations = append(violations, "優先度は0、1、2のいずれかで指定してください。")
	}
	if c := opts.CompletionStatus; c != nil && (*c < model.StatusOpen || *c > model.StatusDone) {
		violations = append(violations, "完了状態は0、1のいずれかで指定してください。")
	}
	return violations
}

func (s *memoService) validate(title, body string, opts model.MemoOptions) error {
	violations := append(s.ValidateMemo(title, body), validateOptions(opts)...)
	if len(violations) == 0 {
		return nil
	}
	return model.NewAppError("VALIDATION_ERROR", violations[0], "", &model.ValidationError{Violations: violations})
}

// timestamp は保存する時刻。どのドライバでも同じ値が読み戻せるようマイクロ秒に丸める。
func (s *memoService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func memoNotFound() *model.AppError {
	return model.NewAppError("MEMO_NOT_FOUND", "メモが見つかりません。", "id", model.ErrNotFound)
}

func (s *memoService) List(ctx context.Context, owner string) ([]*model.Memo, error) {
	logger := middleware.GetLogger(ctx)

	memos, err := s.memoRepo.FindByOwner(ctx, s.db, owner)
	s.metrics.ObserveMemoOperation("list", err)
	if err != nil {
		logger.Error("Failed to list memos", "owner", owner, "error", err)
		return nil, storeError(err)
	}
	return memos, nil
}

// GetByID は他のテナントのメモも存在しないメモと同じく NotFound を返します。
func (s *memoService) GetByID(ctx context.Context, id int64, owner string) (*model.Memo, error) {
	logger := middleware.GetLogger(ctx)

	memo, err := s.memoRepo.FindByID(ctx, s.db, owner, id)
	s.metrics.ObserveMemoOperation("get", err)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, memoNotFound()
		}
		logger.Error("Failed to get memo", "owner", owner, "memo_id", id, "error", err)
		return nil, storeError(err)
	}
	return memo, nil
}

// Create はメモを保存し、同じトランザクションで memo_count を再計算します。
// 返すのは保存後に読み直した行。
func (s *memoService) Create(ctx context.Context, owner, title, body string, opts model.MemoOptions) (*model.Memo, error) {
	logger := middleware.GetLogger(ctx)

	if err := s.validate(title, body, opts); err != nil {
		s.metrics.ObserveMemoOperation("create", err)
		return nil, err
	}

	now := s.timestamp()
	memo := &model.Memo{
		OwnerIdentifier:  owner,
		Title:            strings.TrimSpace(title),
		Body:             strings.TrimSpace(body),
		Priority:         model.PriorityNormal,
		CompletionStatus: model.StatusOpen,
		Tags:             []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	applyOptions(memo, opts)

	var created *model.Memo
	// 書き込みはクライアントの切断で中断させない
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.LockForUpdate(ctx, tx, owner); err != nil {
			return err
		}
		if err := s.memoRepo.Create(ctx, tx, memo); err != nil {
			return err
		}
		if err := s.tenantRepo.RefreshMemoCount(ctx, tx, owner); err != nil {
			return err
		}
		var err error
		created, err = s.memoRepo.FindByID(ctx, tx, owner, memo.ID)
		return err
	})
	s.metrics.ObserveMemoOperation("create", err)
	if err != nil {
		logger.Error("Failed to create memo", "owner", owner, "error", err)
		return nil, storeError(err)
	}

	logger.Info("Memo created", "owner", owner, "memo_id", created.ID)
	return created, nil
}

// Update はタイトルと本文を必ず書き換え、opts で指定された項目だけを変更します。
// updated_at は一致した行があれば必ず進む。
func (s *memoService) Update(ctx context.Context, id int64, owner, title, body string, opts model.MemoOptions) (*model.Memo, error) {
	logger := middleware.GetLogger(ctx)

	if err := s.validate(title, body, opts); err != nil {
		s.metrics.ObserveMemoOperation("update", err)
		return nil, err
	}

	var updated *model.Memo
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.memoRepo.FindByID(ctx, tx, owner, id)
		if err != nil {
			return err
		}

		memo := *current
		memo.Title = strings.TrimSpace(title)
		memo.Body = strings.TrimSpace(body)
		memo.UpdatedAt = s.timestamp()
		// 時計の分解能で同じ時刻になっても updated_at を後退・停止させない
		if floor := current.UpdatedAt.Add(time.Microsecond); memo.UpdatedAt.Before(floor) {
			memo.UpdatedAt = floor
		}
		columns := append([]string{"title", "body", "updated_at"}, applyOptions(&memo, opts)...)

		if err := s.memoRepo.Update(ctx, tx, &memo, columns); err != nil {
			return err
		}
		updated, err = s.memoRepo.FindByID(ctx, tx, owner, id)
		return err
	})
	s.metrics.ObserveMemoOperation("update", err)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, memoNotFound()
		}
		logger.Error("Failed to update memo", "owner", owner, "memo_id", id, "error", err)
		return nil, storeError(err)
	}

	logger.Info("Memo updated", "owner", owner, "memo_id", id)
	return updated, nil
}

// Delete はメモを削除したかどうかを返します。削除した場合は同じトランザクションで memo_count を再計算する。
func (s *memoService) Delete(ctx context.Context, id int64, owner string) (bool, error) {
	logger := middleware.GetLogger(ctx)

	var deleted bool
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.LockForUpdate(ctx, tx, owner); err != nil {
			return err
		}
		var err error
		deleted, err = s.memoRepo.Delete(ctx, tx, owner, id)
		if err != nil || !deleted {
			return err
		}
		return s.tenantRepo.RefreshMemoCount(ctx, tx, owner)
	})
	s.metrics.ObserveMemoOperation("delete", err)
	if err != nil {
		logger.Error("Failed to delete memo", "owner", owner, "memo_id", id, "error", err)
		return false, storeError(err)
	}

	if deleted {
		logger.Info("Memo deleted", "owner", owner, "memo_id", id)
	}
	return deleted, nil
}

// applyOptions は指定された任意項目を memo に反映し、変更した列名を返します。
func applyOptions(memo *model.Memo, opts model.MemoOptions) []string {
	var columns []string
	if opts.Priority != nil {
		memo.Priority = *opts.Priority
		columns = append(columns, "priority")
	}
	if opts.CompletionStatus != nil {
		memo.CompletionStatus = *opts.CompletionStatus
		columns = append(columns, "completion_status")
	}
	if opts.Tags != nil {
		memo.Tags = *opts.Tags
		if memo.Tags == nil {
			memo.Tags = []string{}
		}
		columns = append(columns, "tags")
	}
	return columns
}
