package config

import (
	"os"
	"path"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret"`
	// JwtExpireHours bounds the lifetime of issued access tokens.
	JwtExpireHours int `yaml:"jwt_expire_hours" json:"jwt_expire_hours"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"passwd"`
	DB     int    `yaml:"db" json:"db"`
	// TTLSeconds is the fixed expiry applied to every cache entry.
	TTLSeconds int `yaml:"ttl_seconds" json:"ttl_seconds"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Database DBConfig    `yaml:"database" json:"database"`
	Redis    RedisConfig `yaml:"redis" json:"redis"`
	Smtp     SmtpConfig  `yaml:"smtp" json:"smtp"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "gocart",
		Location: "Asia/Shanghai",
		Workdir:  "/var/gocart",
		Debug:    true,
	},
	Web: WebConfig{
		Host:           "0.0.0.0",
		Port:           1816,
		JwtSecret:      "9b6de5cc-0731-4bf1-xpmsxkvt",
		JwtExpireHours: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "gocart",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Redis: RedisConfig{
		Addr:       "127.0.0.1:6379",
		Passwd:     "",
		DB:         0,
		TTLSeconds: 3600,
	},
	Smtp: SmtpConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "no-reply@gocart.dev",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/gocart/gocart.log",
	},
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvIntValue(name string, f func(v int)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(cast.ToInt(evalue))
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(cast.ToBool(evalue))
	}
}

// LoadConfig reads the YAML configuration file and applies GOCART_*
// environment overrides on top of it. A missing file yields defaults.
func LoadConfig(cfile string) *AppConfig {
	if cfile == "" {
		cfile = "gocart.yml"
	}
	cfg := new(AppConfig)
	if data, err := os.ReadFile(cfile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cfg = DefaultAppConfig
		}
	} else {
		cfg = DefaultAppConfig
	}

	setEnvValue("GOCART_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("GOCART_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })

	setEnvValue("GOCART_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("GOCART_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("GOCART_WEB_JWT_SECRET", func(v string) { cfg.Web.JwtSecret = v })
	setEnvIntValue("GOCART_WEB_JWT_EXPIRE_HOURS", func(v int) { cfg.Web.JwtExpireHours = v })

	setEnvValue("GOCART_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("GOCART_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("GOCART_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("GOCART_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("GOCART_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvBoolValue("GOCART_DB_DEBUG", func(v bool) { cfg.Database.Debug = v })

	setEnvValue("GOCART_REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	setEnvValue("GOCART_REDIS_PWD", func(v string) { cfg.Redis.Passwd = v })
	setEnvIntValue("GOCART_REDIS_DB", func(v int) { cfg.Redis.DB = v })
	setEnvIntValue("GOCART_REDIS_TTL", func(v int) { cfg.Redis.TTLSeconds = v })

	setEnvValue("GOCART_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvIntValue("GOCART_SMTP_PORT", func(v int) { cfg.Smtp.Port = v })
	setEnvValue("GOCART_SMTP_USERNAME", func(v string) { cfg.Smtp.Username = v })
	setEnvValue("GOCART_SMTP_PASSWORD", func(v string) { cfg.Smtp.Password = v })
	setEnvValue("GOCART_SMTP_FROM", func(v string) { cfg.Smtp.From = v })

	setEnvValue("GOCART_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })

	if cfg.Redis.TTLSeconds <= 0 {
		cfg.Redis.TTLSeconds = 3600
	}
	if cfg.Web.JwtExpireHours <= 0 {
		cfg.Web.JwtExpireHours = 24
	}

	return cfg
}
