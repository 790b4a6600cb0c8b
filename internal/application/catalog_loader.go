package application

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/personakit/go-persona/internal/domain"
)

// CatalogLoader provides YAML catalog parsing, validation, and caching,
// transforming declarative catalog documents into immutable domain
// catalogs ready to drive classification.
// Use CatalogLoader to load catalogs from files or readers while
// benefiting from SHA256-based caching and comprehensive validation.
type CatalogLoader struct {
	// validator performs struct field validation and custom validation
	// rules for catalog configurations and their nested components.
	validator *validator.Validate
	// cache stores built catalogs indexed by SHA256 hash of the
	// normalized configuration to avoid rebuilding identical documents.
	cache map[string]*domain.Catalog
	// cacheMu provides thread-safe access to the cache map during
	// concurrent read and write operations.
	cacheMu sync.RWMutex
	// sf prevents duplicate catalog construction when multiple
	// goroutines request the same document simultaneously.
	sf singleflight.Group
}

// NewCatalogLoader creates a catalog loader with validation capabilities
// and an empty cache, ready to load persona catalogs.
// NewCatalogLoader returns an error if validator registration fails.
func NewCatalogLoader() (*CatalogLoader, error) {
	v := validator.New()

	if err := registerCatalogValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &CatalogLoader{
		validator: v,
		cache:     make(map[string]*domain.Catalog),
	}, nil
}

// LoadFromFile loads and builds a persona catalog from a YAML file,
// utilizing SHA256-based caching to avoid rebuilding identical files.
// LoadFromFile returns an error if file reading, parsing, validation,
// or catalog construction fails.
func (cl *CatalogLoader) LoadFromFile(path string) (*domain.Catalog, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return cl.load(data)
}

// LoadFromReader loads and builds a persona catalog from an io.Reader,
// supporting any source that implements the Reader interface.
// LoadFromReader reads all data into memory, applies SHA256-based
// caching, and performs the same validation as LoadFromFile.
func (cl *CatalogLoader) LoadFromReader(r io.Reader) (*domain.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return cl.load(data)
}

// ClearCache removes all cached catalogs, forcing subsequent loads to
// rebuild from source. Use this when catalog files change on disk.
func (cl *CatalogLoader) ClearCache() {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()
	cl.cache = make(map[string]*domain.Catalog)
}

// load is the common implementation for building catalogs from byte
// data, utilizing singleflight to prevent duplicate construction and
// SHA256-based caching for efficiency.
func (cl *CatalogLoader) load(data []byte) (*domain.Catalog, error) {
	// Parse YAML first to normalize it before hashing.
	config, err := cl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Calculate hash based on normalized config, not raw bytes, so
	// formatting-only edits hit the cache.
	hash, err := calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	// Use singleflight to prevent multiple goroutines from building
	// the same catalog simultaneously.
	v, err, _ := cl.sf.Do(hash, func() (any, error) {
		// Check cache inside singleflight to handle the race between
		// cache check and singleflight group execution.
		if catalog, ok := cl.cachedCatalog(hash); ok {
			return catalog, nil
		}

		if err := cl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		catalog, err := buildCatalog(config)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog: %w", err)
		}

		cl.cacheCatalog(hash, catalog)

		return catalog, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Catalog), nil
}

// parseYAML unmarshals YAML byte data into a structured CatalogConfig.
// parseYAML uses strict decoding to detect unknown fields, preventing
// configuration typos from being silently ignored.
func (cl *CatalogLoader) parseYAML(data []byte) (*CatalogConfig, error) {
	var config CatalogConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig performs comprehensive validation on a parsed catalog
// configuration, including both struct field validation and semantic
// validation of relationships between configuration elements.
func (cl *CatalogLoader) validateConfig(config *CatalogConfig) error {
	if err := cl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// validateSemantics enforces catalog rules that cannot be expressed
// through struct tags: identifier uniqueness under case folding,
// reference integrity of question associations and persona match
// lists, and scale sanity.
func validateSemantics(config *CatalogConfig) error {
	if config.Scale != nil {
		scale := domain.ResponseScale{Min: config.Scale.Min, Max: config.Scale.Max}
		if err := scale.Validate(); err != nil {
			return err
		}
	}

	// Case-folded comparison catches IDs that differ only in casing,
	// which would otherwise collide in downstream systems that treat
	// identifiers case-insensitively.
	folder := cases.Fold()

	personaIDs := make([]string, 0, len(config.Personas))
	seenPersonas := make(map[string]string, len(config.Personas))
	for _, persona := range config.Personas {
		folded := folder.String(persona.ID)
		if prev, exists := seenPersonas[folded]; exists {
			return fmt.Errorf("persona ID %q collides with %q after case folding", persona.ID, prev)
		}
		seenPersonas[folded] = persona.ID
		personaIDs = append(personaIDs, persona.ID)
	}

	for _, persona := range config.Personas {
		for _, match := range persona.GoodMatches {
			if _, exists := seenPersonas[folder.String(match)]; !exists {
				return fmt.Errorf("persona %s lists unknown good match %q%s",
					persona.ID, match, didYouMean(match, personaIDs))
			}
		}
	}

	axisIDs := make([]string, 0, 4)
	for _, axis := range domain.ValueAxes() {
		axisIDs = append(axisIDs, string(axis))
	}

	seenQuestions := make(map[string]string, len(config.Questions))
	for _, question := range config.Questions {
		folded := folder.String(question.ID)
		if prev, exists := seenQuestions[folded]; exists {
			return fmt.Errorf("question ID %q collides with %q after case folding", question.ID, prev)
		}
		seenQuestions[folded] = question.ID

		switch domain.QuestionCategory(question.Category) {
		case domain.CategoryPersona:
			if _, exists := seenPersonas[folder.String(question.AssociatedKey)]; !exists {
				return fmt.Errorf("question %s references unknown persona %q%s",
					question.ID, question.AssociatedKey, didYouMean(question.AssociatedKey, personaIDs))
			}
		case domain.CategoryValueAxis:
			if !domain.KnownAxis(domain.AxisID(question.AssociatedKey)) {
				return fmt.Errorf("question %s references unknown value axis %q%s",
					question.ID, question.AssociatedKey, didYouMean(question.AssociatedKey, axisIDs))
			}
		}
	}

	return nil
}

// didYouMean formats an edit-distance suggestion suffix for error
// messages, or an empty string when no candidate is close enough.
func didYouMean(target string, candidates []string) string {
	if suggestion := closestIdentifier(target, candidates); suggestion != "" {
		return fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return ""
}

// buildCatalog constructs an immutable domain catalog from a validated
// configuration, applying the default response scale when the document
// omits one.
func buildCatalog(config *CatalogConfig) (*domain.Catalog, error) {
	scale := domain.DefaultScale
	if config.Scale != nil {
		scale = domain.ResponseScale{Min: config.Scale.Min, Max: config.Scale.Max}
	}

	personas := make([]domain.Persona, 0, len(config.Personas))
	for _, p := range config.Personas {
		matches := make([]domain.PersonaID, 0, len(p.GoodMatches))
		for _, m := range p.GoodMatches {
			matches = append(matches, domain.PersonaID(m))
		}
		personas = append(personas, domain.Persona{
			ID:          domain.PersonaID(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Traits:      p.Traits,
			GoodMatches: matches,
		})
	}

	questions := make([]domain.Question, 0, len(config.Questions))
	for _, q := range config.Questions {
		questions = append(questions, domain.Question{
			ID:            domain.QuestionID(q.ID),
			Text:          q.Text,
			Category:      domain.QuestionCategory(q.Category),
			AssociatedKey: q.AssociatedKey,
			Reversed:      q.Reversed,
		})
	}

	return domain.NewCatalog(config.Metadata.Name, scale, personas, questions)
}

// calculateConfigHash produces a deterministic SHA256 hash of the
// normalized configuration for use as a cache key.
func calculateConfigHash(config *CatalogConfig) (string, error) {
	normalized, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config for hashing: %w", err)
	}

	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}

// cachedCatalog retrieves a previously built catalog from the cache.
func (cl *CatalogLoader) cachedCatalog(hash string) (*domain.Catalog, bool) {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()
	catalog, ok := cl.cache[hash]
	return catalog, ok
}

// cacheCatalog stores a built catalog in the cache for future reuse.
func (cl *CatalogLoader) cacheCatalog(hash string, catalog *domain.Catalog) {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()
	cl.cache[hash] = catalog
}
