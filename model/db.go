package model

import (
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store ist die Hauptstruktur des Modells
type Store struct {
	db     *gorm.DB
	Config *Config
}

type Config struct {
	BaseURL      string
	CookieSecret string
	MailAPIKey   string
	MailSecret   string
	Mode         string
	Port         int
	Servers      map[string]server
}

type server struct {
	Database   string
	DBName     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBLogger   string
}

// shared helper for GORM logger
func gormLoggerFor(cfg *Config, svr server) *gorm.Config {
	gormConfig := &gorm.Config{}
	switch svr.DBLogger {
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	default:
		if cfg.Mode == "development" {
			gormConfig.Logger = logger.Default.LogMode(logger.Info)
		} else {
			gormConfig.Logger = logger.Default.LogMode(logger.Silent)
		}
	}
	return gormConfig
}

func (s *Store) autoMigrate() error {
	var err error
	if err = s.db.AutoMigrate(&Customer{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&Project{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&TimeEntry{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&Invoice{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&InvoiceItem{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&Quote{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&QuoteItem{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&AccountingEntry{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&AccountingCategory{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&VATRate{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&QRTemplate{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&DocumentSequence{}); err != nil {
		return err
	}
	if err = s.db.AutoMigrate(&CompanySettings{}); err != nil {
		return err
	}
	s.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_document_sequences_type_year
         ON document_sequences(doc_type, year)`)
	if err = s.seedVATRates(); err != nil {
		return err
	}
	return nil
}

// InitDatabase starts the database
func InitDatabase(cfg *Config) (*Store, error) {
	var err error

	s := &Store{Config: cfg}
	svr := cfg.Servers[cfg.Mode]

	switch svr.Database {
	case "sqlite3":
		filename := filepath.Join("db", svr.DBName)
		fmt.Println("Use server sqlite3 and database", filename)
		s.db, err = gorm.Open(sqlite.Open(filename), gormLoggerFor(cfg, svr))
		if err != nil {
			return nil, err
		}
	case "postgresql":
		fmt.Println("Use server postgresql and database", svr.DBName)
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable TimeZone=UTC",
			svr.DBHost, svr.DBUser, svr.DBPassword, svr.DBName)
		s.db, err = gorm.Open(postgres.Open(dsn), gormLoggerFor(cfg, svr))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("not implemented yet")
	}
	if err = s.autoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenTestStore opens an in-memory sqlite database. Used by the fixtures
// package; not meant for production code paths.
func OpenTestStore() (*Store, error) {
	cfg := &Config{Mode: "test", Servers: map[string]server{}}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, Config: cfg}
	if err = s.autoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}
