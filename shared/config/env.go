package config

import (
	"os"
	"strings"
)

// applyEnv applies environment overrides on top of defaults and the file.
func (c *Config) applyEnv() {
	setString(&c.Database.ConnectionString, "DATABASE_URL")
	setString(&c.Database.Schema, "DATABASE_SCHEMA")
	setString(&c.JWT.SecretKey, "JWT_SECRET")
	setString(&c.Captcha.SecretKey, "CAPTCHA_SECRET")
	setString(&c.Service.Name, "SERVICE_NAME")
	setString(&c.Server.Port, "PORT")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Images.Dir, "IMAGES_DIR")
	setString(&c.Images.Backend, "IMAGES_BACKEND")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setString(&c.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&c.S3.SecretKey, "S3_SECRET_KEY")

	if v, ok := os.LookupEnv("USER_SERVICE_URL"); ok && v != "" {
		c.Gateway.UserServiceURL = strings.TrimSuffix(v, "/")
	}
	if v, ok := os.LookupEnv("PRODUCT_SERVICE_URL"); ok && v != "" {
		c.Gateway.ProductServiceURL = strings.TrimSuffix(v, "/")
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
