package db

import (
	"fmt"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/types"
	"github.com/jrprasath/paperhouse-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewService connects to Postgres when POSTGRES_HOST is set, otherwise it
// falls back to an embedded SQLite file under the data directory. A small
// promo site rarely warrants a database server.
func NewService(log *logger.Logger, dataDir string) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	var dialector gorm.Dialector
	if host := utils.GetEnv("POSTGRES_HOST", "", log); host != "" {
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "paperhouse", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		serviceLog.Info("Connecting to Postgres", "host", host, "database", name)
		dialector = postgres.Open(dsn)
	} else {
		path := filepath.Join(dataDir, "paperhouse.db")
		serviceLog.Info("POSTGRES_HOST not set, using embedded SQLite", "path", path)
		dialector = sqlite.Open(path)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(&types.Contact{}); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
