package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the canonical article category bucket. Providers map their own
// section/topic vocabulary onto this set; anything unmapped lands in general.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryPolitics      Category = "politics"
	CategoryWorld         Category = "world"
	CategoryNational      Category = "national"
	CategoryHealth        Category = "health"
	CategoryEnvironment   Category = "environment"
	CategoryFinance       Category = "finance"
	CategoryEducation     Category = "education"
	CategoryLifestyle     Category = "lifestyle"
	CategoryTravel        Category = "travel"
	CategoryFood          Category = "food"
)

var categories = map[Category]struct{}{
	CategoryGeneral:       {},
	CategoryTechnology:    {},
	CategoryBusiness:      {},
	CategoryScience:       {},
	CategorySports:        {},
	CategoryEntertainment: {},
	CategoryPolitics:      {},
	CategoryWorld:         {},
	CategoryNational:      {},
	CategoryHealth:        {},
	CategoryEnvironment:   {},
	CategoryFinance:       {},
	CategoryEducation:     {},
	CategoryLifestyle:     {},
	CategoryTravel:        {},
	CategoryFood:          {},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// ParseCategory normalizes a free-form category string to a canonical
// Category, falling back to general for anything unknown.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryGeneral
}

const DefaultTitle = "Untitled"

// ArticleDraft is the normalized, not-yet-persisted representation of one
// upstream item. SourceURL is the sole dedup key.
type ArticleDraft struct {
	Title           string         `json:"title"`
	Content         string         `json:"content"`
	Summary         string         `json:"summary,omitempty"`
	SourceName      string         `json:"source_name"`
	SourceURL       string         `json:"source_url"`
	Author          string         `json:"author,omitempty"`
	PublishedAt     time.Time      `json:"published_at"`
	ImageURL        string         `json:"image_url,omitempty"`
	Category        Category       `json:"category,omitempty"`
	CountryCode     string         `json:"country_code,omitempty"`
	Latitude        *float64       `json:"latitude,omitempty"`
	Longitude       *float64       `json:"longitude,omitempty"`
	SentimentScore  *float64       `json:"sentiment_score,omitempty"`
	ImportanceScore *float64       `json:"importance_score,omitempty"`
	Meta            map[string]any `json:"meta,omitempty"`
}

// HasLocation reports whether the draft carries a usable geocoordinate.
func (d ArticleDraft) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// Article is a persisted ArticleDraft plus system identity and storage
// timestamps. Created only by the ingestion write path; enrichment steps
// mutate it through the same store interface.
type Article struct {
	ID uuid.UUID `json:"id"`
	ArticleDraft
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
