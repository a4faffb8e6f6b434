package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "tenant"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", ClockSkew: -1},
	}
}

func TestLoad_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	c := validConfig()
	c.Auth.JWTSecret = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_AppliesAuthDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected default access ttl, got %s", c.Auth.AccessTokenTTL)
	}
	if c.Auth.ClockSkew != 30*time.Second {
		t.Fatalf("expected default skew, got %s", c.Auth.ClockSkew)
	}
	if c.Auth.RefreshPath != "/auth/refresh" {
		t.Fatalf("expected default refresh path, got %q", c.Auth.RefreshPath)
	}
	if c.Login.MaxAttempts != 10 || c.Login.Window != 15*time.Minute {
		t.Fatalf("unexpected login defaults: %+v", c.Login)
	}
}

func TestValidate_KeepsExplicitZeroSkew(t *testing.T) {
	c := validConfig()
	c.Auth.ClockSkew = 0
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Auth.ClockSkew != 0 {
		t.Fatalf("expected zero skew to be kept, got %s", c.Auth.ClockSkew)
	}
}

func TestValidate_RefreshTTLMustExceedAccessTTL(t *testing.T) {
	c := validConfig()
	c.Auth.AccessTokenTTL = time.Hour
	c.Auth.RefreshTokenTTL = time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when refresh ttl <= access ttl")
	}
}

func TestLoad_ParsesAuthEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "tenant")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_EXPIRATION_MS", "60000")
	t.Setenv("JWT_CLOCK_SKEW_SECONDS", "0")
	t.Setenv("JWT_REFRESH_TTL", "24h")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Auth.AccessTokenTTL != time.Minute {
		t.Fatalf("expected 1m access ttl, got %s", c.Auth.AccessTokenTTL)
	}
	if c.Auth.ClockSkew != 0 {
		t.Fatalf("expected explicit zero skew, got %s", c.Auth.ClockSkew)
	}
	if c.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h refresh ttl, got %s", c.Auth.RefreshTokenTTL)
	}
}

func TestLoad_RejectsNegativeSkew(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_CLOCK_SKEW_SECONDS", "-5")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative skew")
	}
}
