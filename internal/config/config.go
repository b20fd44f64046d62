package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Mail     MailConfig     `yaml:"mail"`
	Intake   IntakeConfig   `yaml:"intake"`
	Brands   []BrandConfig  `yaml:"brands"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
	NotifyQueue string `yaml:"notify_queue"`
	DLQSuffix   string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type MailConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	From          string        `yaml:"from"`
	StaffFallback []string      `yaml:"staff_fallback"`
	AttachCopy    bool          `yaml:"attach_copy"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

type IntakeConfig struct {
	MaxUploadBytes   int64  `yaml:"max_upload_bytes"`
	DefaultTimezone  string `yaml:"default_timezone"`
	GeoLatHeader     string `yaml:"geo_lat_header"`
	GeoLonHeader     string `yaml:"geo_lon_header"`
	GeoCountryHeader string `yaml:"geo_country_header"`
	GeoPostalHeader  string `yaml:"geo_postal_header"`
	HoneypotField    string `yaml:"honeypot_field"`
}

type BrandConfig struct {
	Slug        string   `yaml:"slug"`
	DisplayName string   `yaml:"display_name"`
	ColorTheme  string   `yaml:"color_theme"`
	LogoKey     string   `yaml:"logo_key"`
	Recipients  []string `yaml:"recipients"`
}

type WorkersConfig struct {
	Notify NotifyWorkerConfig `yaml:"notify"`
}

type NotifyWorkerConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Intake.MaxUploadBytes == 0 {
		c.Intake.MaxUploadBytes = 25 << 20
	}
	if c.Intake.DefaultTimezone == "" {
		c.Intake.DefaultTimezone = "Europe/Amsterdam"
	}
	if c.Intake.GeoLatHeader == "" {
		c.Intake.GeoLatHeader = "CloudFront-Viewer-Latitude"
	}
	if c.Intake.GeoLonHeader == "" {
		c.Intake.GeoLonHeader = "CloudFront-Viewer-Longitude"
	}
	if c.Intake.GeoCountryHeader == "" {
		c.Intake.GeoCountryHeader = "CloudFront-Viewer-Country"
	}
	if c.Intake.GeoPostalHeader == "" {
		c.Intake.GeoPostalHeader = "CloudFront-Viewer-Postal-Code"
	}
	if c.Intake.HoneypotField == "" {
		c.Intake.HoneypotField = "website"
	}
	if c.Mail.RetryAttempts == 0 {
		c.Mail.RetryAttempts = 3
	}
	if c.Mail.RetryDelay == 0 {
		c.Mail.RetryDelay = 30 * time.Second
	}
	if c.Workers.Notify.Count == 0 {
		c.Workers.Notify.Count = 2
	}
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
