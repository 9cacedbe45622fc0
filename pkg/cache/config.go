package cache

import "time"

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"6379"`
	Password     string        `yaml:"password" default:""`
	DB           int           `yaml:"db" default:"0"`
	KeyPrefix    string        `yaml:"key_prefix" default:"risklens"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"3s"`
	PoolSize     int           `yaml:"pool_size" default:"10"`
}

// MemoryConfig holds in-process cache settings.
type MemoryConfig struct {
	MaxEntries      int           `yaml:"max_entries" default:"1024"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1m"`
}
