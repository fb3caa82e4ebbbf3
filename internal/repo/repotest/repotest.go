// Package repotest opens a migrated in-memory sqlite database for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	dsn := fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := pkgdb.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}

func NewRepo(t testing.TB) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: Open(t)}
}
