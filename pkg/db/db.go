package db

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	constant "liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

// busy_timeout covers other processes holding the file; journal_mode lets
// readers run beside the writer.
const sqliteFileOptions = "?_busy_timeout=5000&_journal_mode=WAL"

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

func GetInstance(dialector gorm.Dialector) *DB {
	var logger = constant.GetLogger()
	once.Do(func() {
		conn, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

		instance = &DB{Conn: conn}

		if err := instance.Migrate(); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		logger.Info("Database migration completed")

		if dialector.Name() == "sqlite" {
			if err := instance.SerializeWriters(); err != nil {
				log.Fatal("Failed to configure sqlite pool", err)
			}
		}
	})
	return instance
}

func (d *DB) Migrate() error {
	return d.Conn.AutoMigrate(&models.SensorReading{}, &models.RFIDAccess{})
}

// SerializeWriters pins the pool to a single connection. sqlite allows one
// writer at a time and shared-cache memory databases report SQLITE_LOCKED
// instead of waiting, so concurrent transactions must queue in the pool.
func (d *DB) SerializeWriters() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(constant.EnvKeyIOTDbPath); !found {
		dbPath = "telemetry.db"
	}
	return sqlite.Open(dbPath + sqliteFileOptions)
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}

// UsePostgresDialector reads a libpq style DSN from IOT_POSTGRES_DSN, e.g.
// "host=localhost user=iot password=iot dbname=iot port=5432 sslmode=disable".
func UsePostgresDialector() gorm.Dialector {
	dsn, found := os.LookupEnv(constant.EnvKeyIOTPostgresDSN)
	if !found || dsn == "" {
		log.Fatal("IOT_POSTGRES_DSN must be set when IOT_DB_TYPE=postgres")
	}
	return postgres.Open(dsn)
}

// DialectorFor maps an IOT_DB_TYPE value to its dialector.
func DialectorFor(dbType string) (gorm.Dialector, bool) {
	switch dbType {
	case "file":
		return UseSqliteDialector(), true
	case "memory":
		return UseMemorySqliteDialector(), true
	case "postgres":
		return UsePostgresDialector(), true
	default:
		return nil, false
	}
}
