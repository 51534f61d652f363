package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server reads from the environment.
type Config struct {
	ServerPort   int
	DatabaseURL  string
	GamesDir     string
	JWTSecretKey string

	// Bcrypt hash of the admin passphrase.
	AdminPassphraseHash string

	CORSAllowedOrigins []string

	// Cloudflare R2 settings for configuration bundle exports. All five must
	// be set for the export surface to come up; otherwise it stays disabled.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from the environment, with a best-effort .env
// file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "data/camporee.db"
	}

	gamesDir := os.Getenv("GAMES_DIR")
	if gamesDir == "" {
		gamesDir = "games"
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	passphraseHash := os.Getenv("ADMIN_PASSPHRASE_HASH")
	if passphraseHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSPHRASE_HASH environment variable is not set")
	}

	var origins []string
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	cfg := &Config{
		ServerPort:          port,
		DatabaseURL:         dbURL,
		GamesDir:            gamesDir,
		JWTSecretKey:        jwtKey,
		AdminPassphraseHash: passphraseHash,
		CORSAllowedOrigins:  origins,
		R2AccountID:         os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:     os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// R2Configured reports whether every R2 setting is present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" &&
		c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" &&
		c.R2PublicBaseURL != ""
}
