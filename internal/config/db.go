package config

import (
	"fmt"
	"os"
)

// GetDatabaseDSN returns the MySQL connection string for the event archive.
// It checks for individual environment variables first, then DATABASE_DSN,
// then falls back to a local development default.
func GetDatabaseDSN() string {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_NAME")

	if user != "" && password != "" && host != "" && port != "" && database != "" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, database)
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}

	return "flarecast:flarecast123@tcp(localhost:3306)/flarecast?parseTime=true"
}
