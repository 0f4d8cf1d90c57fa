package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
}

// Connection represents a saved database connection profile. The
// profile is treated as an immutable value once loaded.
type Connection struct {
	Name           string `mapstructure:"name" yaml:"name" validate:"required"`
	Driver         string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=mysql postgres"`
	Host           string `mapstructure:"host" yaml:"host" validate:"required"`
	Port           int    `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	Database       string `mapstructure:"database" yaml:"database" validate:"required"`
	Username       string `mapstructure:"username" yaml:"username" validate:"required"`
	Password       string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode        string `mapstructure:"sslmode" yaml:"sslmode"`
	ConnectTimeout int    `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"min=0"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
}

var validate = validator.New()

// Validate checks a connection profile for missing or malformed fields.
func (c Connection) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid connection %q: %w", c.Name, err)
	}
	return nil
}

// DSN builds the driver-specific connection string for the profile.
func (c Connection) DSN() string {
	switch c.Driver {
	case "mysql":
		return c.mysqlDSN()
	default:
		return c.postgresDSN()
	}
}

// mysqlDSN builds a go-sql-driver DSN:
// user:pass@tcp(host:port)/db?parseTime=true&timeout=10s
func (c Connection) mysqlDSN() string {
	var b strings.Builder
	b.WriteString(c.Username)
	if c.Password != "" {
		b.WriteString(":" + c.Password)
	}
	b.WriteString("@tcp(" + c.Host)
	port := c.Port
	if port == 0 {
		port = 3306
	}
	b.WriteString(":" + strconv.Itoa(port) + ")")
	b.WriteString("/" + c.Database)
	b.WriteString("?parseTime=true")
	if c.ConnectTimeout > 0 {
		b.WriteString(fmt.Sprintf("&timeout=%ds", c.ConnectTimeout))
	}
	return b.String()
}

// postgresDSN builds a URL-style PostgreSQL connection string.
func (c Connection) postgresDSN() string {
	dsn := "postgresql://"
	if c.Username != "" {
		dsn += url.QueryEscape(c.Username)
		if c.Password != "" {
			dsn += ":" + url.QueryEscape(c.Password)
		}
		dsn += "@"
	}
	dsn += c.Host
	if c.Port > 0 {
		dsn += ":" + strconv.Itoa(c.Port)
	}
	dsn += "/" + c.Database

	params := url.Values{}
	if c.SSLMode != "" {
		params.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", strconv.Itoa(c.ConnectTimeout))
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a mysql:// or postgresql:// URL into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}

	var driver string
	var defaultPort int
	switch u.Scheme {
	case "mysql":
		driver = "mysql"
		defaultPort = 3306
	case "postgres", "postgresql":
		driver = "postgres"
		defaultPort = 5432
	default:
		return Connection{}, fmt.Errorf("unsupported DSN scheme %q", u.Scheme)
	}

	conn := Connection{
		Driver:   driver,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = defaultPort
	}

	// Auto-generate a name
	conn.Name = fmt.Sprintf("%s-%s-%d-%s", driver, conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}
