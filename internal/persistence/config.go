package persistence

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Driver names the relational backend behind a connection.
type Driver string

const (
	// DriverPostgres targets a network PostgreSQL endpoint through lib/pq.
	DriverPostgres Driver = "postgres"
	// DriverSQLite targets a local database file through modernc.org/sqlite.
	DriverSQLite Driver = "sqlite"
)

// ParseDriver resolves a configured driver name.
func ParseDriver(value string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("persistence: unsupported driver %q", value)
	}
}

// GoquDialect returns the goqu dialect used to render statements for the driver.
func (d Driver) GoquDialect() string {
	if d == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// ConnectionConfig describes how to reach the database. Network backends use
// Host/Port/User/Password/DatabaseName, file backends use FilePath.
type ConnectionConfig struct {
	Driver       Driver
	Host         string
	Port         int
	User         string
	Password     string
	DatabaseName string
	SSLMode      string
	FilePath     string
	MaxOpenConns int
}

// DSN renders the data source name handed to database/sql.
func (c ConnectionConfig) DSN() string {
	switch c.Driver {
	case DriverSQLite:
		return "file:" + c.FilePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		return c.postgresURL().String()
	}
}

// MigrationURL renders the URL understood by golang-migrate database drivers.
func (c ConnectionConfig) MigrationURL() string {
	switch c.Driver {
	case DriverSQLite:
		return "sqlite://" + c.FilePath
	default:
		return c.postgresURL().String()
	}
}

func (c ConnectionConfig) postgresURL() *url.URL {
	host := c.Host
	if c.Port > 0 {
		host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   "/" + c.DatabaseName,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()
	return u
}
