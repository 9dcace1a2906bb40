package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Queries 所有 repository 方法的實作, db 可能是連線或交易
type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

var _ repository.Store = (*GormStore)(nil)

type GormStore struct {
	*Queries
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{
		Queries: NewQueries(db),
		db:      db,
	}
}

func (s *GormStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewQueries(tx))
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return classifyTxError(err)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// 可重試的 postgres 錯誤碼
var retryablePgCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"57014": {}, // query_canceled
}

func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrRetryableTx) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", repository.ErrRetryableTx, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryablePgCodes[pgErr.Code]; ok {
			return fmt.Errorf("%w: %v", repository.ErrRetryableTx, err)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
