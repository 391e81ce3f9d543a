//go:build postgres

package main

import (
	"fmt"

	"github.com/kontorapp/kontor/model"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

func migrationsDir() string { return "migrations/postgres" }

func migrateDSN(cfg *model.Config) string {
	svr := cfg.Servers[cfg.Mode]
	return fmt.Sprintf("postgres://%s:%s@%s:5432/%s?sslmode=disable",
		svr.DBUser, svr.DBPassword, svr.DBHost, svr.DBName)
}
