package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is the insecure fallback used when JWT_SECRET is unset.
// Kept for compatibility with the legacy deployment; startup logs a warning
// when it is in effect.
const DefaultJWTSecret = "secret-key"

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret  string
		TokenTTL   time.Duration
		BcryptCost int
	}
	RateLimit struct {
		RPS   float64
		Burst int
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		PublicBaseURL string
	}
	AWS struct {
		Profile string
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

// UsesDefaultSecret reports whether the insecure fallback secret is active.
func (c Config) UsesDefaultSecret() bool {
	return c.Auth.JWTSecret == DefaultJWTSecret
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("MESTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy env names take their historical form
	_ = v.BindEnv("server.port", "PORT", "MESTO_SERVER_PORT")
	_ = v.BindEnv("auth.jwtsecret", "JWT_SECRET", "MESTO_AUTH_JWTSECRET")

	v.SetDefault("server.port", "3000")
	v.SetDefault("database.path", "data/mesto.db")
	v.SetDefault("auth.jwtsecret", DefaultJWTSecret)
	v.SetDefault("auth.tokenttl", "168h") // 7 days, legacy contract
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "mesto-photos")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
