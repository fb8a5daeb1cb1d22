package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/internal/store/gormstore"
	"github.com/taskdesk/apiserver/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gormstore.AutoMigrate(db))
	return db
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishTaskEvent(ctx context.Context, event types.TaskEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
