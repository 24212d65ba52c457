package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gomovies/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewPostgresDB inicializa e configura o pool de conexões com o PostgreSQL (driver lib/pq).
// O mesmo *sql.DB é usado pelo goose (cmd/migrate) e pelo GORM.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return db, nil
}

// Open abre o *gorm.DB para o driver configurado.
// Em sqlite o esquema é criado por AutoMigrate; em postgres, pelas migrações do goose.
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if debug {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	switch driver {
	case DriverPostgres:
		sqlDB, err := NewPostgresDB(dsn)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("falha ao iniciar GORM (postgres): %w", err)
		}
		return db, nil

	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(sqliteDSN(dsn)), cfg)
		if err != nil {
			return nil, fmt.Errorf("falha ao abrir sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serializa escritas; uma conexão evita "database is locked".
		sqlDB.SetMaxOpenConns(1)
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	return nil, fmt.Errorf("driver de banco desconhecido: %q", driver)
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// AutoMigrate cria/atualiza as tabelas a partir dos modelos de domínio.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Movie{}, &domain.Genre{}, &domain.Rating{}); err != nil {
		return fmt.Errorf("falha no auto-migrate: %w", err)
	}
	return nil
}

// Close fecha o pool subjacente ao *gorm.DB.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueViolation reconhece violação de unicidade em qualquer um dos drivers suportados.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
