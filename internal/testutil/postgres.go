// Package testutil starts disposable infrastructure for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vendas-escolares/internal/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	dbName = "testdb"
	dbUser = "user"
	dbPwd  = "password"
)

// Postgres is a migrated database running in a throwaway container
type Postgres struct {
	DB        *sql.DB
	container *postgres.PostgresContainer
}

// StartPostgres runs postgres:15, applies every migration and returns the pool
func StartPostgres(ctx context.Context) (*Postgres, error) {
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("could not start postgres container: %w", err)
	}

	pg := &Postgres{container: dbContainer}

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, err
	}

	pg.DB, err = sql.Open("pgx", connStr)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, err
	}

	if err := database.RunMigrations(pg.DB, zap.NewNop()); err != nil {
		_ = pg.Terminate(ctx)
		return nil, err
	}

	return pg, nil
}

// Reset empties every table and restarts the id sequences
func (p *Postgres) Reset(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `TRUNCATE pedido_itens, pedidos, produtos RESTART IDENTITY`)
	return err
}

// Terminate closes the pool and removes the container
func (p *Postgres) Terminate(ctx context.Context) error {
	if p.DB != nil {
		_ = p.DB.Close()
	}
	return p.container.Terminate(ctx)
}
