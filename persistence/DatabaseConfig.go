package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_DRIVER=mysql DATABASE_ARGS=user:pass@(host:3306)/dbname?...
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := os.Getenv("DATABASE_DRIVER")
	if driverType == "" {
		driverType = "mysql"
	}
	driverArgs := os.ExpandEnv(os.Getenv("DATABASE_ARGS"))
	if driverArgs == "" {
		return nil, errors.New("environment variable DATABASE_ARGS is not set")
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// PrepareMysqlDatabase create the database of the DSN when absent
func PrepareMysqlDatabase(driverArgs string) error {
	dsnWithoutDatabase, database, err := splitMysqlDatabase(driverArgs)
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", dsnWithoutDatabase)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + database + "` CHARACTER SET utf8mb4")
	return err
}

func splitMysqlDatabase(driverArgs string) (string, string, error) {
	idx := strings.LastIndex(driverArgs, "/")
	if idx < 0 {
		return "", "", errors.New("invalid mysql DSN: " + driverArgs)
	}
	database := driverArgs[idx+1:]
	if p := strings.Index(database, "?"); p >= 0 {
		database = database[0:p]
	}
	if database == "" {
		return "", "", errors.New("database name is absent in DSN")
	}
	return driverArgs[0:idx+1] + driverArgs[idx+1+len(database):], database, nil
}
