package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewQueryJournalRepositoryForTest creates a journal repository with test database and logger
func NewQueryJournalRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.QueryJournalRepository {
	return postgres.NewQueryJournalRepository(NewDBForTest(db, logger))
}
