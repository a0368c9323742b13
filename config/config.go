package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type DB struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type Redis struct {
	Addr string
	Pass string
	DB   int
}

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Backup struct {
	// Driver selects the artifact store: "local" or "s3".
	Driver          string
	StoragePath     string
	S3              S3
	ScheduleEvery   time.Duration
	StorageCapacity int64
	EncryptionSalt  string
}

type Config struct {
	// Mode is the explicit deployment mode ("dev" or "prod"). Prod turns
	// on Secure cookies and the __Secure- cookie name prefix.
	Mode string
	HTTP struct {
		Host string
		Port int
	}
	DB    DB
	Redis Redis
	JWT   struct {
		Secret string
		Issuer string
		ExpMin int
	}
	Session struct {
		TTL time.Duration
	}
	Backup Backup
}

func (c *Config) Prod() bool { return c.Mode == "prod" }

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.mode", "dev")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 9500)
	v.SetDefault("server.db.host", "127.0.0.1")
	v.SetDefault("server.db.port", 3306)
	v.SetDefault("server.db.user", "root")
	v.SetDefault("server.db.pass", "")
	v.SetDefault("server.db.name", "medstock")
	v.SetDefault("server.redis.addr", "")
	v.SetDefault("server.session.ttl_hours", 720)
	v.SetDefault("server.backup.driver", "local")
	v.SetDefault("server.backup.storage_path", "backups")
	v.SetDefault("server.backup.schedule_hours", 24)
	v.SetDefault("server.backup.storage_capacity", 10*1024*1024*1024)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Mode: v.GetString("server.mode"),
		DB: DB{
			Host: v.GetString("server.db.host"),
			Port: v.GetInt("server.db.port"),
			User: v.GetString("server.db.user"),
			Pass: v.GetString("server.db.pass"),
			Name: v.GetString("server.db.name"),
		},
		Redis: Redis{
			Addr: v.GetString("server.redis.addr"),
			Pass: v.GetString("server.redis.pass"),
			DB:   v.GetInt("server.redis.db"),
		},
		Backup: Backup{
			Driver:          v.GetString("server.backup.driver"),
			StoragePath:     v.GetString("server.backup.storage_path"),
			ScheduleEvery:   time.Duration(v.GetInt("server.backup.schedule_hours")) * time.Hour,
			StorageCapacity: v.GetInt64("server.backup.storage_capacity"),
			EncryptionSalt:  v.GetString("server.backup.encryption_salt"),
			S3: S3{
				Endpoint:  v.GetString("server.backup.s3.endpoint"),
				AccessKey: v.GetString("server.backup.s3.access_key"),
				SecretKey: v.GetString("server.backup.s3.secret_key"),
				Bucket:    v.GetString("server.backup.s3.bucket"),
				UseSSL:    v.GetBool("server.backup.s3.use_ssl"),
			},
		},
	}
	cfg.HTTP.Host = v.GetString("server.host")
	cfg.HTTP.Port = v.GetInt("server.port")
	cfg.Session.TTL = time.Duration(v.GetInt("server.session.ttl_hours")) * time.Hour
	cfg.JWT.Secret = v.GetString("server.jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("server.jwt.issuer")
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "medstock"
	}
	cfg.JWT.ExpMin = v.GetInt("server.jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	if cfg.Backup.EncryptionSalt == "" {
		cfg.Backup.EncryptionSalt = "medstock-backup"
	}
	if cfg.Mode != "dev" && cfg.Mode != "prod" {
		return nil, fmt.Errorf("invalid server.mode %q (want dev or prod)", cfg.Mode)
	}
	return cfg, nil
}
