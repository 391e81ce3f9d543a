package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kontorapp/kontor/controller"
	"github.com/kontorapp/kontor/model"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pelletier/go-toml/v2"
)

func runMigrations(cfg *model.Config, direction string) error {
	m, err := migrate.New("file://"+migrationsDir(), migrateDSN(cfg))
	if err != nil {
		return fmt.Errorf("cannot initialize migrations: %w", err)
	}
	defer m.Close()

	switch direction {
	case "down":
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func dothings() error {
	data, err := os.ReadFile("config.toml")
	if err != nil {
		return err
	}
	cfg := &model.Config{}
	if err = toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("cannot parse config.toml: %w", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		direction := "up"
		if len(os.Args) > 2 {
			direction = os.Args[2]
		}
		return runMigrations(cfg, direction)
	}

	db, err := model.InitDatabase(cfg)
	if err != nil {
		return err
	}
	return controller.NewController(db)
}

func main() {
	if err := dothings(); err != nil {
		log.Fatal(err)
	}
}
