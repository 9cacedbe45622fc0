package clickhouse

import "time"

// Config holds ClickHouse connection settings.
type Config struct {
	Host            string        `yaml:"host" default:"localhost"`
	Port            int           `yaml:"port" default:"9000"`
	Database        string        `yaml:"database" default:"risklens"`
	Username        string        `yaml:"username" default:"default"`
	Password        string        `yaml:"password" default:""`
	DialTimeout     time.Duration `yaml:"dial_timeout" default:"5s"`
	MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"1h"`
}
