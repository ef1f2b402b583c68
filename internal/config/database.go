// internal/config/database.go
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// DSN renders the connection string for the configured driver.
func (d *DatabaseConfig) DSN() (string, error) {
	switch d.Driver {
	case "postgres":
		if d.URL != "" {
			// gorm's postgres driver takes key/value DSNs; accept URLs too.
			return pq.ParseURL(d.URL)
		}
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			quoteDSNValue(d.Host), quoteDSNValue(d.Port), quoteDSNValue(d.User),
			quoteDSNValue(d.Password), quoteDSNValue(d.Database), quoteDSNValue(d.SSLMode),
		), nil

	case "mysql":
		if d.URL != "" {
			return d.URL, nil
		}
		cfg := mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, d.Port)
		cfg.DBName = d.Database
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN(), nil

	case "sqlite":
		if d.URL != "" {
			return d.URL, nil
		}
		return d.Database, nil
	}

	return "", fmt.Errorf("unsupported database driver %q", d.Driver)
}

var dsnValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteDSNValue quotes a libpq key/value parameter, as pq.ParseURL does.
func quoteDSNValue(v string) string {
	return "'" + dsnValueEscaper.Replace(v) + "'"
}
