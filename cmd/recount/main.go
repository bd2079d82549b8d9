// cmd/recount は tenants.memo_count を memos の実件数と突き合わせ、ずれていれば直すバッチです。
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/repository"

	// PostgreSQLドライバ。database/sql から "postgres" として使う
	_ "github.com/lib/pq"
)

// drift は memo_count と実件数が一致しないテナント
type drift struct {
	Identifier string
	Stored     int64
	Actual     int64
}

const driftQuery = `
SELECT t.identifier, t.memo_count, COUNT(m.id)
FROM tenants t
LEFT JOIN memos m ON m.owner_identifier = t.identifier
GROUP BY t.identifier, t.memo_count
HAVING t.memo_count <> COUNT(m.id)
ORDER BY t.identifier`

const fixQuery = `
UPDATE tenants
SET memo_count = (SELECT COUNT(*) FROM memos WHERE memos.owner_identifier = tenants.identifier)
WHERE memo_count <> (SELECT COUNT(*) FROM memos WHERE memos.owner_identifier = tenants.identifier)`

func main() {
	configDir := flag.String("config", "configs", "config.yaml を置いたディレクトリ")
	dryRun := flag.Bool("dry-run", false, "ずれを表示するだけで更新しない")
	flag.Parse()

	if err := config.LoadConfig(*configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(config.Cfg.Log)
	slog.SetDefault(logger)

	db, err := openDB(config.Cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	drifts, fixed, err := reconcile(ctx, db, *dryRun)
	if err != nil {
		logger.Error("Recount failed", slog.Any("error", err))
		os.Exit(1)
	}
	for _, d := range drifts {
		fmt.Printf("%s\tstored=%d\tactual=%d\n", d.Identifier, d.Stored, d.Actual)
	}
	logger.Info("Recount finished",
		slog.Int("drifted", len(drifts)),
		slog.Int64("fixed", fixed),
		slog.Bool("dry_run", *dryRun),
	)
}

// openDB は PostgreSQL なら lib/pq で直接、それ以外は gorm 経由で *sql.DB を開きます。
func openDB(cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if cfg.Driver == config.DriverPostgres || cfg.Driver == "" {
		db, err := sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("openDB: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("openDB: ping: %w", err)
		}
		return db, nil
	}

	gormDB, err := repository.NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	return gormDB.DB()
}

// reconcile はずれているテナントを列挙し、dryRun でなければ1トランザクションで直します。
func reconcile(ctx context.Context, db *sql.DB, dryRun bool) ([]drift, int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("reconcile: begin: %w", err)
	}
	defer tx.Rollback()

	drifts, err := findDrifts(ctx, tx)
	if err != nil {
		return nil, 0, err
	}
	if dryRun || len(drifts) == 0 {
		return drifts, 0, nil
	}

	result, err := tx.ExecContext(ctx, fixQuery)
	if err != nil {
		return nil, 0, fmt.Errorf("reconcile: update: %w", err)
	}
	fixed, err := result.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("reconcile: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("reconcile: commit: %w", err)
	}
	return drifts, fixed, nil
}

func findDrifts(ctx context.Context, tx *sql.Tx) ([]drift, error) {
	rows, err := tx.QueryContext(ctx, driftQuery)
	if err != nil {
		return nil, fmt.Errorf("findDrifts query: %w", err)
	}
	defer rows.Close()

	drifts := []drift{}
	for rows.Next() {
		var d drift
		if err := rows.Scan(&d.Identifier, &d.Stored, &d.Actual); err != nil {
			return nil, fmt.Errorf("findDrifts scan: %w", err)
		}
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("findDrifts rows err: %w", err)
	}
	return drifts, nil
}
