package repotest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

const integrationEnv = "STOREFRONT_INTEGRATION"

// OpenPostgres starts a throwaway postgres container and returns a migrated
// connection to it. The test is skipped unless STOREFRONT_INTEGRATION=1.
func OpenPostgres(t testing.TB) *gorm.DB {
	t.Helper()

	if os.Getenv(integrationEnv) != "1" {
		t.Skipf("set %s=1 to run postgres integration tests", integrationEnv)
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "shop",
			"POSTGRES_DB":       "storefront",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://shop:shop@%s:%s/storefront?sslmode=disable", host, port.Port())
	db, err := pkgdb.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}
