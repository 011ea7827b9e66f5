package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Addr     string   `yaml:"addr"` // empty disables the task cache
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

type RemindersConfig struct {
	Interval   Duration `yaml:"interval"`
	DueWindow  Duration `yaml:"due_window"`
	BatchLimit int      `yaml:"batch_limit"`
}

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string   `yaml:"jwt_secret"`
		AccessTTL Duration `yaml:"access_ttl"`
		ResetTTL  Duration `yaml:"reset_ttl"`
	} `yaml:"auth"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Redis     RedisConfig     `yaml:"redis"`
	Reminders RemindersConfig `yaml:"reminders"`
	Tasks     struct {
		DefaultPageSize int `yaml:"default_page_size"`
	} `yaml:"tasks"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = Duration(24 * time.Hour)
	}
	if cfg.Auth.ResetTTL == 0 {
		cfg.Auth.ResetTTL = Duration(time.Hour)
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = Duration(time.Minute)
	}
	if cfg.Reminders.Interval == 0 {
		cfg.Reminders.Interval = Duration(time.Minute)
	}
	if cfg.Reminders.DueWindow == 0 {
		cfg.Reminders.DueWindow = Duration(24 * time.Hour)
	}
	if cfg.Reminders.BatchLimit == 0 {
		cfg.Reminders.BatchLimit = 200
	}
	if cfg.Tasks.DefaultPageSize == 0 {
		cfg.Tasks.DefaultPageSize = 10
	}
	return &cfg
}
