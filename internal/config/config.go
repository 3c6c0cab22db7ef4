package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// DefaultInvestors is the bundled investor list, used when no INVESTORS
// override is configured
var DefaultInvestors = []domain.InvestorRef{
	{Name: "Parag Parikh Flexi Cap Fund", URL: "https://www.screener.in/people/97814/parag-parikh-flexi-cap-fund/"},
	{Name: "Mirae Asset Emerging Bluechip Fund", URL: "https://www.screener.in/people/1604/mirae-asset-emerging-bluechip-fund/"},
	{Name: "Quant Mutual Fund - Quant Small Cap Fund", URL: "https://www.screener.in/people/145014/quant-mutual-fund-quant-small-cap-fund/"},
	{Name: "Ashish Kacholia", URL: "https://www.screener.in/people/127736/ashish-kacholia/"},
	{Name: "Mukul Mahavir Agrawal", URL: "https://www.screener.in/people/127675/mukul-mahavir-agrawal/"},
	{Name: "Sunil Singhania", URL: "https://trendlyne.com/portfolio/superstar-shareholders/182955/latest/sunil-singhania-portfolio/"},
	{Name: "Vijay Kedia", URL: "https://www.screener.in/people/7377/vijay-krishanlal-kedia/"},
	{Name: "Madhuri Kela", URL: "https://www.screener.in/people/30960/madhuri-madhusudan-kela/"},
	{Name: "Massachusetts Institute of Technology", URL: "https://trendlyne.com/portfolio/superstar-shareholders/1537932/latest/massachusetts-institute-of-technology/"},
	{Name: "Jupiter India Fund", URL: "https://www.screener.in/people/1555/jupiter-india-fund/"},
}

// Config is the runtime configuration
type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Investors   []domain.InvestorRef
}

// Load reads configuration for the profile selected by APP_ENV (default
// "local"): values come from the `.env.<profile>` file when it exists,
// with real environment variables taking precedence
func Load() (*Config, error) {
	v := viper.New()

	profile := os.Getenv("APP_ENV")
	if profile == "" {
		profile = "local"
	}
	v.SetConfigFile(".env." + profile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing profile file is fine, the environment alone may be enough
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file .env.%s: %w", profile, err)
		}
	}

	cfg := &Config{
		DatabaseURL: v.GetString("DATABASE_URL"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDatabaseURL(v)
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if raw := v.GetString("INVESTORS"); raw != "" {
		investors, err := ParseInvestors(raw)
		if err != nil {
			return nil, err
		}
		cfg.Investors = investors
	} else {
		cfg.Investors = DefaultInvestors
	}

	return cfg, nil
}

// buildDatabaseURL assembles a lib/pq connection string from discrete
// variables, defaulting each part for local development (Docker friendly)
func buildDatabaseURL(v *viper.Viper) string {
	host := v.GetString("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := v.GetString("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := v.GetString("DB_USER")
	if user == "" {
		user = "postgres"
	}
	password := v.GetString("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := v.GetString("DB_NAME")
	if dbname == "" {
		dbname = "holdingswatch"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// ParseInvestors parses a newline-delimited "Name|URL" investor override list
func ParseInvestors(raw string) ([]domain.InvestorRef, error) {
	var investors []domain.InvestorRef
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, url, found := strings.Cut(line, "|")
		if !found {
			return nil, fmt.Errorf("invalid investor definition %q, expected 'Name|URL'", line)
		}
		investors = append(investors, domain.InvestorRef{
			Name: strings.TrimSpace(name),
			URL:  strings.TrimSpace(url),
		})
	}
	if len(investors) == 0 {
		return nil, errors.New("investor override list is empty")
	}
	return investors, nil
}
