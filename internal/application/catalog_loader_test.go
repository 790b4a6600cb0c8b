package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personakit/go-persona/internal/domain"
)

const validCatalogYAML = `
version: "1.0.0"
metadata:
  name: youth-values-quiz
  description: Value profile quiz for first-time voters.
  tags: [values, onboarding]
personas:
  - id: idealist
    name: The Idealist
    traits: [visionary, optimistic]
    good_matches: [pragmatist]
  - id: pragmatist
    name: The Pragmatist
    good_matches: [idealist]
  - id: guardian
    name: The Guardian
questions:
  - id: q1
    text: Big goals matter more than small wins.
    category: persona
    associated_key: idealist
  - id: q2
    text: A workable plan beats a perfect one.
    category: persona
    associated_key: pragmatist
  - id: q3
    text: Rules exist to be questioned.
    category: persona
    associated_key: guardian
    reversed: true
  - id: q4
    text: Personal freedom outweighs group harmony.
    category: value-axis
    associated_key: individual-collective
  - id: q5
    text: Safety is worth some restrictions.
    category: value-axis
    associated_key: security-freedom
    reversed: true
`

func TestCatalogLoader_LoadFromReader(t *testing.T) {
	loader, err := NewCatalogLoader()
	require.NoError(t, err)

	catalog, err := loader.LoadFromReader(strings.NewReader(validCatalogYAML))
	require.NoError(t, err)

	assert.Equal(t, "youth-values-quiz", catalog.Name())
	assert.Equal(t, domain.DefaultScale, catalog.Scale(), "omitted scale should default to 1-5")
	assert.Equal(t, 3, catalog.NumPersonas())
	assert.Equal(t, 5, catalog.NumQuestions())

	q3, ok := catalog.QuestionByID("q3")
	require.True(t, ok)
	assert.True(t, q3.Reversed)
	assert.Equal(t, domain.CategoryPersona, q3.Category)
}

func TestCatalogLoader_CustomScale(t *testing.T) {
	doc := strings.Replace(validCatalogYAML, "metadata:", "scale:\n  min: 0\n  max: 10\nmetadata:", 1)

	loader, err := NewCatalogLoader()
	require.NoError(t, err)

	catalog, err := loader.LoadFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseScale{Min: 0, Max: 10}, catalog.Scale())
}

func TestCatalogLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validCatalogYAML), 0o644))

	loader, err := NewCatalogLoader()
	require.NoError(t, err)

	catalog, err := loader.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "youth-values-quiz", catalog.Name())

	_, err = loader.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")
}

func TestCatalogLoader_Caching(t *testing.T) {
	loader, err := NewCatalogLoader()
	require.NoError(t, err)

	first, err := loader.LoadFromReader(strings.NewReader(validCatalogYAML))
	require.NoError(t, err)

	second, err := loader.LoadFromReader(strings.NewReader(validCatalogYAML))
	require.NoError(t, err)
	assert.Same(t, first, second, "identical documents should hit the cache")

	// A comment-only edit changes the bytes but not the normalized
	// config, so the hash and therefore the cache entry are shared.
	commented := "# revised\n" + validCatalogYAML
	third, err := loader.LoadFromReader(strings.NewReader(commented))
	require.NoError(t, err)
	assert.Same(t, first, third)

	loader.ClearCache()
	fourth, err := loader.LoadFromReader(strings.NewReader(validCatalogYAML))
	require.NoError(t, err)
	assert.NotSame(t, first, fourth, "cleared cache should force a rebuild")
}

func TestCatalogLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(doc string) string
		wantErr string
	}{
		{
			name:    "unknown top-level field",
			mutate:  func(doc string) string { return doc + "\nextras: true\n" },
			wantErr: "YAML decode failed",
		},
		{
			name:    "missing version",
			mutate:  func(doc string) string { return strings.Replace(doc, `version: "1.0.0"`, "", 1) },
			wantErr: "struct validation failed",
		},
		{
			name:    "malformed version",
			mutate:  func(doc string) string { return strings.Replace(doc, `"1.0.0"`, `"v1"`, 1) },
			wantErr: "struct validation failed",
		},
		{
			name: "single persona",
			mutate: func(doc string) string {
				doc = strings.Replace(doc, "  - id: pragmatist\n    name: The Pragmatist\n    good_matches: [idealist]\n", "", 1)
				doc = strings.Replace(doc, "  - id: guardian\n    name: The Guardian\n", "", 1)
				doc = strings.Replace(doc, "    good_matches: [pragmatist]\n", "", 1)
				doc = strings.Replace(doc, "associated_key: pragmatist", "associated_key: idealist", 1)
				doc = strings.Replace(doc, "associated_key: guardian", "associated_key: idealist", 1)
				return doc
			},
			wantErr: "struct validation failed",
		},
		{
			name:    "uppercase persona ID",
			mutate:  func(doc string) string { return strings.Replace(doc, "- id: guardian", "- id: Guardian", 1) },
			wantErr: "struct validation failed",
		},
		{
			name:    "invalid category",
			mutate:  func(doc string) string { return strings.Replace(doc, "category: value-axis", "category: axis", 1) },
			wantErr: "struct validation failed",
		},
		{
			name: "duplicate persona ID",
			mutate: func(doc string) string {
				doc = strings.Replace(doc, "- id: guardian\n    name: The Guardian",
					"- id: idealist\n    name: Shadow", 1)
				return strings.Replace(doc, "associated_key: guardian", "associated_key: idealist", 1)
			},
			wantErr: "collides",
		},
		{
			name: "duplicate question ID",
			mutate: func(doc string) string {
				return strings.Replace(doc, "- id: q5", "- id: q4", 1)
			},
			wantErr: "collides",
		},
		{
			name: "unknown good match",
			mutate: func(doc string) string {
				return strings.Replace(doc, "good_matches: [idealist]", "good_matches: [idealists]", 1)
			},
			wantErr: `did you mean "idealist"?`,
		},
		{
			name: "unknown persona association",
			mutate: func(doc string) string {
				return strings.Replace(doc, "associated_key: pragmatist", "associated_key: pragmatis", 1)
			},
			wantErr: `did you mean "pragmatist"?`,
		},
		{
			name: "unknown axis association",
			mutate: func(doc string) string {
				return strings.Replace(doc, "associated_key: security-freedom", "associated_key: security-fredom", 1)
			},
			wantErr: `did you mean "security-freedom"?`,
		},
		{
			name: "inverted scale",
			mutate: func(doc string) string {
				return strings.Replace(doc, "metadata:", "scale:\n  min: 5\n  max: 1\nmetadata:", 1)
			},
			wantErr: "semantic validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := NewCatalogLoader()
			require.NoError(t, err)

			_, err = loader.LoadFromReader(strings.NewReader(tt.mutate(validCatalogYAML)))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCatalogLoader_ConcurrentLoads(t *testing.T) {
	loader, err := NewCatalogLoader()
	require.NoError(t, err)

	const workers = 16
	catalogs := make([]*domain.Catalog, workers)
	done := make(chan int, workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			c, err := loader.LoadFromReader(strings.NewReader(validCatalogYAML))
			assert.NoError(t, err)
			catalogs[i] = c
			done <- i
		}(i)
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	for i := 1; i < workers; i++ {
		assert.Same(t, catalogs[0], catalogs[i], "all goroutines should share one cached catalog")
	}
}
