package jdbc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/datazip-inc/olake-pager/constants"
)

// SQLDriverName maps a driver type to the name registered with database/sql
func SQLDriverName(driver constants.DriverType) (string, error) {
	switch driver {
	case constants.MySQL:
		return "mysql", nil
	case constants.Postgres:
		return "pgx", nil
	case constants.SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// VersionQuery returns the statement reporting the server version
func VersionQuery(driver constants.DriverType) string {
	switch driver {
	case constants.MySQL:
		return "SELECT @@version"
	case constants.Postgres:
		return "SHOW server_version"
	default:
		return "SELECT sqlite_version()"
	}
}

// ServerVersion returns the flavor, major and minor version of the database server
func ServerVersion(ctx context.Context, client *sqlx.DB, driver constants.DriverType) (string, int, int, error) {
	var version string
	err := client.QueryRowContext(ctx, VersionQuery(driver)).Scan(&version)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to get %s version: %s", driver, err)
	}

	major, minor, err := ParseVersion(version)
	if err != nil {
		return "", 0, 0, err
	}

	flavor := string(driver)
	if strings.Contains(strings.ToUpper(version), "MARIADB") {
		flavor = "mariadb"
	}
	return flavor, major, minor, nil
}

// ParseVersion reads the leading major.minor numbers of a version string such as 8.0.23-log or 16.2 (Debian 16.2-1)
func ParseVersion(version string) (int, int, error) {
	version = strings.TrimSpace(version)
	if idx := strings.IndexAny(version, " -"); idx >= 0 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid version format")
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid major version: %s", err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version: %s", err)
	}
	return major, minor, nil
}
