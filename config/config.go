package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type (
	APP struct {
		Name string
		Host string
		Port string
		Env  string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	Sessions struct {
		Dir string
		TTL time.Duration
	}
	S3 struct {
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
		Endpoint        string
		OpTimeout       time.Duration
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Thumbs struct {
		Workers    int
		PutRetries int
	}

	Config struct {
		App      APP
		DB       DB
		Sessions Sessions
		S3       S3
		MQ       MQ
		Thumbs   Thumbs
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func Load() Config {
	app := APP{
		Name: getEnv("SERVICE_NAME", "filevault"),
		Host: getEnv("SERVICE_HOST", ""),
		Port: getEnv("SERVICE_PORT", "8080"),
		Env:  getEnv("SERVICE_ENV", ""),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	sessions := Sessions{
		Dir: getEnv("SESSION_CACHE_DIR", "/var/lib/filevault/sessions"),
		TTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}
	s3 := S3{
		Region:          getEnv("S3_REGION", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		BucketUploads:   getEnv("S3_BUCKET_UPLOADS", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		OpTimeout:       time.Duration(getEnvInt("S3_OP_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "filevault"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "direct"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "thumbnail-jobs"),
	}
	thumbs := Thumbs{
		Workers:    getEnvInt("THUMB_WORKERS", 4),
		PutRetries: getEnvInt("THUMB_PUT_RETRIES", 3),
	}

	return Config{
		App:      app,
		DB:       db,
		Sessions: sessions,
		S3:       s3,
		MQ:       mq,
		Thumbs:   thumbs,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}
