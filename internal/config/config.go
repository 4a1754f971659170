package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported values for AUDIT_STORE.
const (
	AuditStoreDatabase = "database"
	AuditStoreMongo    = "mongo"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret string

	// Audit
	AuditStore           string
	AuditDefaultOperator string
	AuditTableFile       string

	// MongoDB
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "datalog"),
		DBPassword: getEnv("DB_PASSWORD", "datalog"),
		DBName:     getEnv("DB_NAME", "datalog"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "datalog.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Audit
		AuditStore:           getEnv("AUDIT_STORE", AuditStoreDatabase),
		AuditDefaultOperator: getEnv("AUDIT_DEFAULT_OPERATOR", "admin"),
		AuditTableFile:       os.Getenv("AUDIT_TABLE_FILE"),

		// MongoDB
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "datalog"),
		MongoCollection: getEnv("MONGO_COLLECTION", "actions"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be %s or %s", c.DBDriver, DriverPostgres, DriverSQLite)
	}
	switch c.AuditStore {
	case AuditStoreDatabase, AuditStoreMongo:
	default:
		return fmt.Errorf("invalid AUDIT_STORE %q: must be %s or %s", c.AuditStore, AuditStoreDatabase, AuditStoreMongo)
	}
	return nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
