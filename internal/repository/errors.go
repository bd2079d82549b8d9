package repository

import (
	"errors"
	"log/slog"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbErrorAttrs はドライバ固有のエラー情報 (SQLSTATE / MySQL エラー番号) をログ属性に変換します。
// 詳細は運用ログにだけ出し、上位には包んだエラーを返す。
func dbErrorAttrs(err error) []any {
	attrs := []any{slog.Any("error", err)}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return append(attrs,
			slog.String("sqlstate", pgErr.Code),
			slog.String("constraint", pgErr.ConstraintName),
		)
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return append(attrs, slog.Int("mysql_errno", int(myErr.Number)))
	}

	return attrs
}
