package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var db *gorm.DB

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Init initializes the database connection with connection pooling
func Init() error {
	cfg := config.Get()
	var err error

	dialector, err := openDialector(&cfg.Database)
	if err != nil {
		return err
	}

	// Silent mode keeps queries and their parameters out of the logs.
	// Errors are still returned to application code.
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err = gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool (PostgreSQL only)
	if cfg.Database.IsPostgres() {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

		log.Printf("[DB] Connection pool configured: maxOpen=%d, maxIdle=%d", maxOpenConns, maxIdleConns)
	}

	if err := registerMetricsCallbacks(db); err != nil {
		return fmt.Errorf("failed to register metrics callbacks: %w", err)
	}

	if err := testConnection(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	log.Println("[DB] Running database migrations...")
	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("[DB] Database connected and migrated successfully")
	return nil
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	if cfg.IsPostgres() {
		log.Println("[DB] Connecting to PostgreSQL database...")
		return postgres.Open(cfg.GetPostgresDSN()), nil
	}

	log.Println("[DB] Connecting to SQLite database...")
	dbPath := cfg.GetSQLitePath()
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dbPath,
		Conn:       sqlDB,
	}, nil
}

const metricsStartKey = "metrics:start"

// registerMetricsCallbacks times every query and feeds the duration
// into the Prometheus histograms.
func registerMetricsCallbacks(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(metricsStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(metricsStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			metrics.RecordDBQuery(operation, time.Since(start), tx.Error)
		}
	}

	for _, err := range []error{
		db.Callback().Query().Before("gorm:query").Register("metrics:before_query", before),
		db.Callback().Query().After("gorm:query").Register("metrics:after_query", after("query")),
		db.Callback().Create().Before("gorm:create").Register("metrics:before_create", before),
		db.Callback().Create().After("gorm:create").Register("metrics:after_create", after("create")),
		db.Callback().Update().Before("gorm:update").Register("metrics:before_update", before),
		db.Callback().Update().After("gorm:update").Register("metrics:after_update", after("update")),
		db.Callback().Delete().Before("gorm:delete").Register("metrics:before_delete", before),
		db.Callback().Delete().After("gorm:delete").Register("metrics:after_delete", after("delete")),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Migrate runs AutoMigrate for every domain entity
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Developer{},
		&domain.Property{},
		&domain.Inquiry{},
		&domain.OffplanInquiry{},
		&domain.BlogPost{},
		&domain.Testimonial{},
		&domain.TeamMember{},
		&domain.Message{},
	)
}

// testConnection tests the database connection
func testConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call database.Init() first.")
	}
	return db
}

// HealthCheck performs a database health check
func HealthCheck() error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return testConnection()
}

// GetStats returns database connection statistics
func GetStats() (*sql.DBStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return &stats, nil
}
