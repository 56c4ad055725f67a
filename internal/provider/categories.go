package provider

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grasp-news/grasp/internal/domain"
)

// CategoryMap translates one provider's section/topic vocabulary into
// canonical categories. Lookups are case-insensitive; anything unmapped
// resolves to the general bucket.
type CategoryMap map[string]domain.Category

func (m CategoryMap) Resolve(key string) domain.Category {
	if c, ok := m[strings.ToLower(strings.TrimSpace(key))]; ok {
		return c
	}
	return domain.CategoryGeneral
}

// CategoryMappings holds the per-provider tables, normally loaded from
// configs/categories.yaml. Missing sections fall back to the compiled-in
// defaults.
type CategoryMappings struct {
	Content CategoryMap
	Links   CategoryMap
}

type categoryMappingFile struct {
	Content map[string]string `yaml:"content"`
	Links   map[string]string `yaml:"links"`
}

// LoadCategoryMappings decodes the YAML mapping tables. Entries mapping to
// an unknown category are rejected rather than silently bucketed, so a typo
// in the config file fails fast.
func LoadCategoryMappings(r io.Reader) (*CategoryMappings, error) {
	var file categoryMappingFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode category mappings: %w", err)
	}

	mappings := &CategoryMappings{
		Content: DefaultContentSections(),
		Links:   DefaultLinkSubreddits(),
	}
	if len(file.Content) > 0 {
		m, err := buildCategoryMap("content", file.Content)
		if err != nil {
			return nil, err
		}
		mappings.Content = m
	}
	if len(file.Links) > 0 {
		m, err := buildCategoryMap("links", file.Links)
		if err != nil {
			return nil, err
		}
		mappings.Links = m
	}
	return mappings, nil
}

func buildCategoryMap(section string, raw map[string]string) (CategoryMap, error) {
	m := make(CategoryMap, len(raw))
	for key, val := range raw {
		c := domain.Category(strings.ToLower(strings.TrimSpace(val)))
		if !c.Valid() {
			return nil, fmt.Errorf("category mapping %s.%s: unknown category %q", section, key, val)
		}
		m[strings.ToLower(strings.TrimSpace(key))] = c
	}
	return m, nil
}

// DefaultCategoryMappings returns the compiled-in tables.
func DefaultCategoryMappings() *CategoryMappings {
	return &CategoryMappings{
		Content: DefaultContentSections(),
		Links:   DefaultLinkSubreddits(),
	}
}

// DefaultContentSections maps the content provider's section ids.
func DefaultContentSections() CategoryMap {
	return CategoryMap{
		"technology":   domain.CategoryTechnology,
		"business":     domain.CategoryBusiness,
		"science":      domain.CategoryScience,
		"sport":        domain.CategorySports,
		"football":     domain.CategorySports,
		"culture":      domain.CategoryEntertainment,
		"film":         domain.CategoryEntertainment,
		"music":        domain.CategoryEntertainment,
		"politics":     domain.CategoryPolitics,
		"world":        domain.CategoryWorld,
		"uk-news":      domain.CategoryNational,
		"us-news":      domain.CategoryNational,
		"environment":  domain.CategoryEnvironment,
		"money":        domain.CategoryFinance,
		"education":    domain.CategoryEducation,
		"society":      domain.CategoryHealth,
		"lifeandstyle": domain.CategoryLifestyle,
		"travel":       domain.CategoryTravel,
		"food":         domain.CategoryFood,
	}
}

// DefaultLinkSubreddits maps the link provider's community names.
func DefaultLinkSubreddits() CategoryMap {
	return CategoryMap{
		"technology":    domain.CategoryTechnology,
		"tech":          domain.CategoryTechnology,
		"programming":   domain.CategoryTechnology,
		"business":      domain.CategoryBusiness,
		"economics":     domain.CategoryBusiness,
		"science":       domain.CategoryScience,
		"askscience":    domain.CategoryScience,
		"sports":        domain.CategorySports,
		"nba":           domain.CategorySports,
		"soccer":        domain.CategorySports,
		"nfl":           domain.CategorySports,
		"entertainment": domain.CategoryEntertainment,
		"movies":        domain.CategoryEntertainment,
		"television":    domain.CategoryEntertainment,
		"politics":      domain.CategoryPolitics,
		"worldnews":     domain.CategoryWorld,
		"news":          domain.CategoryGeneral,
		"health":        domain.CategoryHealth,
		"fitness":       domain.CategoryHealth,
		"environment":   domain.CategoryEnvironment,
		"education":     domain.CategoryEducation,
		"travel":        domain.CategoryTravel,
		"food":          domain.CategoryFood,
		"cooking":       domain.CategoryFood,
	}
}
