package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// the read API, the document store the crawler writes into, and the market-data provider.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	STORE_DRIVER=mongo
//	MONGO_URI=mongodb://localhost:27017
//	MONGO_DB=REIT
//	MONGO_COLLECTION=reit_info
//	REIT_TICKERS=A17U,C38U,N2IU
//	MARKET_SUFFIX=.SI
//	DERIVE_PARALLEL=1
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Store    StoreConfig    // Which document store receives the crawl output
	Mongo    MongoConfig    // MongoDB connection settings
	Postgres PostgresConfig // PostgreSQL connection settings
	Crawler  CrawlerConfig  // Tickers and provider settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// StoreConfig selects the document sink.
type StoreConfig struct {
	Driver string // "mongo" or "postgres"
}

// MongoConfig defines connection details for MongoDB.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// CrawlerConfig drives a single crawl run.
//
// Fields:
//   - Tickers: short exchange tickers, in the order they are crawled.
//   - MarketSuffix: appended to each ticker to form the provider symbol (".SI" for SGX).
//   - ProviderURL: base URL of the market-data provider.
//   - HTTPTimeout: per-request timeout of the provider client.
//   - Parallel: how many symbols are derived concurrently (1 = sequential).
type CrawlerConfig struct {
	Tickers      []string
	MarketSuffix string
	ProviderURL  string
	HTTPTimeout  time.Duration
	Parallel     int
}

// DefaultTickers is the SGX REIT set tracked when REIT_TICKERS is not set.
var DefaultTickers = []string{
	"A17U", "C38U", "N2IU", "M44U", "ME8U",
	"J69U", "BUOU", "K71U", "T82U", "AJBU",
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("STORE_DRIVER", "mongo")

	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "REIT")
	viper.SetDefault("MONGO_COLLECTION", "reit_info")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "reit")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("REIT_TICKERS", strings.Join(DefaultTickers, ","))
	viper.SetDefault("MARKET_SUFFIX", ".SI")
	viper.SetDefault("YAHOO_BASE_URL", "https://query2.finance.yahoo.com")
	viper.SetDefault("HTTP_TIMEOUT", "15s")
	viper.SetDefault("DERIVE_PARALLEL", 1)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(viper.GetString("STORE_DRIVER")),
		},
		Mongo: MongoConfig{
			URI:        viper.GetString("MONGO_URI"),
			Database:   viper.GetString("MONGO_DB"),
			Collection: viper.GetString("MONGO_COLLECTION"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Crawler: CrawlerConfig{
			Tickers:      ParseTickers(viper.GetString("REIT_TICKERS")),
			MarketSuffix: viper.GetString("MARKET_SUFFIX"),
			ProviderURL:  viper.GetString("YAHOO_BASE_URL"),
			HTTPTimeout:  viper.GetDuration("HTTP_TIMEOUT"),
			Parallel:     viper.GetInt("DERIVE_PARALLEL"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// ParseTickers splits a comma-separated ticker list, dropping blanks and duplicates
// while keeping the first-seen order.
func ParseTickers(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Behavior:
//   - Checks each critical field of AppConfig, including the fields of the selected store only.
//   - Collects missing ones in a slice.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if len(AppConfig.Crawler.Tickers) == 0 {
		missing = append(missing, "REIT_TICKERS")
	}
	if AppConfig.Crawler.ProviderURL == "" {
		missing = append(missing, "YAHOO_BASE_URL")
	}

	switch AppConfig.Store.Driver {
	case "mongo":
		if AppConfig.Mongo.URI == "" {
			missing = append(missing, "MONGO_URI")
		}
		if AppConfig.Mongo.Database == "" {
			missing = append(missing, "MONGO_DB")
		}
		if AppConfig.Mongo.Collection == "" {
			missing = append(missing, "MONGO_COLLECTION")
		}
	case "postgres":
		if AppConfig.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if AppConfig.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if AppConfig.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if AppConfig.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if AppConfig.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	default:
		missing = append(missing, "STORE_DRIVER (mongo|postgres)")
	}

	if len(missing) > 0 {
		log.Fatalf("❌ Missing required environment variables: %v\n", missing)
	}
}
