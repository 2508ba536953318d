package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Reports struct {
		Dir                  string `yaml:"dir"`
		PropertyTemplatePath string `yaml:"propertyTemplate"`
		CompTemplatePath     string `yaml:"compTemplate"`
	} `yaml:"reports"`

	// Database is optional; driver "none" keeps history in memory.
	Database struct {
		Driver   string `yaml:"driver"` // none | mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	// Minio is optional; empty endpoint disables the archive mirror.
	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Auth struct {
		// API keys by client name; empty map disables auth.
		Keys map[string]string `yaml:"keys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load reads the config.yaml file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default builds a config without a file, for running out of the box.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "property_reports"
	}
	if c.Reports.PropertyTemplatePath == "" {
		c.Reports.PropertyTemplatePath = "template.docx"
	}
	if c.Reports.CompTemplatePath == "" {
		c.Reports.CompTemplatePath = "comptemplate.docx"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "none"
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
}

// API keys come from the environment only, never from YAML.
func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }
func (c *Config) GoogleKey() string { return os.Getenv("GOOGLE_API_KEY") }

// MySQLDSN helper to build the MySQL connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN helper to build the Postgres connection string
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
