package database

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"modernc.org/sqlite"
)

// UnicodeLower is the sqlite function that folds case for all of Unicode.
// The built-in lower() only folds ASCII.
const UnicodeLower = "unicode_lower"

var registerErr = sqlite.RegisterDeterministicScalarFunction(UnicodeLower, 1, unicodeLower)

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// LowerFunc names the SQL function that lowercases text the way
// strings.ToLower does on the dialect behind db.
func LowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "LOWER"
	}
	return UnicodeLower
}

// Connect opens postgres for postgres:// DSNs and the pure Go sqlite driver
// for everything else. Sqlite gets foreign keys enabled, times written in a
// format its date functions understand, and a single open connection so that
// the engine serializes statements.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if IsPostgres(dsn) {
		log.Info("connecting to postgres")
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}

	if registerErr != nil {
		return nil, fmt.Errorf("register sqlite functions: %w", registerErr)
	}

	log.Info("using sqlite", zap.String("dsn", dsn))
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        sqliteDSN(dsn),
		}),
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqliteDSN adds the foreign_keys pragma and the sqlite time format unless
// the DSN already sets them.
func sqliteDSN(dsn string) string {
	if !strings.Contains(dsn, "foreign_keys") {
		dsn = addParam(dsn, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "_time_format") {
		dsn = addParam(dsn, "_time_format=sqlite")
	}
	return dsn
}

func addParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}
