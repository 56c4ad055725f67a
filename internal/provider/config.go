package provider

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config gathers the settings for all three adapters. Loaded from the
// environment; the category mapping tables come from CategoriesFile when set,
// compiled-in defaults otherwise.
type Config struct {
	Headlines      HeadlinesConfig
	Content        ContentConfig
	Links          LinksConfig
	CategoriesFile string
}

func LoadEnv() (*Config, error) {
	cfg := &Config{
		Headlines: HeadlinesConfig{
			BaseURL:    os.Getenv("HEADLINES_BASE_URL"),
			APIKey:     os.Getenv("HEADLINES_API_KEY"),
			Country:    os.Getenv("HEADLINES_COUNTRY"),
			DailyLimit: envInt("HEADLINES_RATE_LIMIT"),
		},
		Content: ContentConfig{
			BaseURL:    os.Getenv("CONTENT_BASE_URL"),
			APIKey:     os.Getenv("CONTENT_API_KEY"),
			SourceName: os.Getenv("CONTENT_SOURCE_NAME"),
			DailyLimit: envInt("CONTENT_RATE_LIMIT"),
		},
		Links: LinksConfig{
			BaseURL:        os.Getenv("LINKS_BASE_URL"),
			AuthURL:        os.Getenv("LINKS_AUTH_URL"),
			ClientID:       os.Getenv("LINKS_CLIENT_ID"),
			ClientSecret:   os.Getenv("LINKS_CLIENT_SECRET"),
			Username:       os.Getenv("LINKS_USERNAME"),
			Password:       os.Getenv("LINKS_PASSWORD"),
			UserAgent:      os.Getenv("LINKS_USER_AGENT"),
			PerMinuteLimit: envInt("LINKS_RATE_LIMIT"),
		},
		CategoriesFile: os.Getenv("CATEGORIES_FILE"),
	}

	if subs := os.Getenv("LINKS_SUBREDDITS"); subs != "" {
		for _, s := range strings.Split(subs, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Links.Subreddits = append(cfg.Links.Subreddits, s)
			}
		}
	}

	if timeout := envInt("UPSTREAM_TIMEOUT_SECONDS"); timeout > 0 {
		d := time.Duration(timeout) * time.Second
		cfg.Headlines.Timeout = d
		cfg.Content.Timeout = d
		cfg.Links.Timeout = d
	}

	return cfg, nil
}

// BuildAdapters constructs the three adapters sharing one usage recorder.
// Missing credentials do not prevent construction; the affected adapter
// reports an auth error on fetch and the cycle degrades per provider.
func BuildAdapters(cfg *Config, rec Recorder) ([]Adapter, error) {
	mappings := DefaultCategoryMappings()
	if cfg.CategoriesFile != "" {
		file, err := os.Open(cfg.CategoriesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open categories file: %w", err)
		}
		defer file.Close()

		mappings, err = LoadCategoryMappings(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories file %s: %w", cfg.CategoriesFile, err)
		}
		slog.Info("category mappings loaded", "file", cfg.CategoriesFile,
			"content_entries", len(mappings.Content), "links_entries", len(mappings.Links))
	}

	return []Adapter{
		NewHeadlinesAdapter(cfg.Headlines, rec),
		NewContentAdapter(cfg.Content, mappings.Content, rec),
		NewLinksAdapter(cfg.Links, mappings.Links, rec),
	}, nil
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-numeric environment value", "key", key, "value", v)
		return 0
	}
	return n
}
