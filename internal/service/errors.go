package service

import (
	"fmt"
	"time"

	"go_memo_keep/internal/model"
)

const internalErrorMessage = "サーバー内部でエラーが発生しました。"

// storeError はストア層のエラーを汎用の内部エラーに変換します。詳細は Err に残り、ログにだけ出る。
func storeError(err error) *model.AppError {
	return model.NewAppError("INTERNAL_SERVER_ERROR", internalErrorMessage, "", fmt.Errorf("%w: %w", model.ErrInternalServer, err))
}

func utcNow() time.Time {
	return time.Now().UTC()
}
