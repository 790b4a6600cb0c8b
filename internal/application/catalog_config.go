package application

// CatalogConfig is the top-level YAML schema for a persona catalog
// document, containing the response scale, persona definitions, and
// the question bank.
// CatalogConfig is a transport shape only; semantic rules such as
// association resolution are enforced by CatalogLoader before a
// domain.Catalog is built from it.
type CatalogConfig struct {
	// Version is the catalog schema version in semantic version format.
	Version string `yaml:"version" validate:"required,semver"`

	// Metadata describes the catalog for documentation and labeling.
	Metadata CatalogMetadata `yaml:"metadata" validate:"required"`

	// Scale bounds the raw answer values accepted for every question.
	// When omitted, the loader applies the default 1 to 5 scale.
	Scale *ScaleConfig `yaml:"scale,omitempty"`

	// Personas lists the outcome profiles respondents can be matched to.
	Personas []PersonaConfig `yaml:"personas" validate:"required,min=2,max=100,dive"`

	// Questions lists the question bank in presentation order. The
	// declaration order here is load-bearing: it decides classification
	// tie-breaks and the ordering of missing-answer reports.
	Questions []QuestionConfig `yaml:"questions" validate:"required,min=1,max=1000,dive"`
}

// CatalogMetadata provides descriptive information about a catalog.
type CatalogMetadata struct {
	// Name identifies the catalog in logs, metrics, and run IDs.
	Name string `yaml:"name" validate:"required,identifier,min=1,max=255"`

	// Description provides human-readable catalog documentation.
	Description string `yaml:"description,omitempty" validate:"max=1000"`

	// Tags enable catalog categorization and filtering.
	Tags []string `yaml:"tags,omitempty" validate:"max=20,dive,min=1,max=50"`
}

// ScaleConfig declares the inclusive bounds of the response scale.
type ScaleConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// PersonaConfig declares a single persona profile.
type PersonaConfig struct {
	// ID uniquely identifies the persona and is the target of
	// persona-category question associations.
	ID string `yaml:"id" validate:"required,identifier,min=1,max=100"`

	// Name is the display name shown to respondents.
	Name string `yaml:"name,omitempty" validate:"max=255"`

	// Description explains the persona in prose.
	Description string `yaml:"description,omitempty" validate:"max=2000"`

	// Traits lists short descriptive attributes of the persona.
	Traits []string `yaml:"traits,omitempty" validate:"max=20,dive,min=1,max=100"`

	// GoodMatches lists IDs of personas this persona pairs well with.
	// Every entry must resolve to a persona declared in the same catalog.
	GoodMatches []string `yaml:"good_matches,omitempty" validate:"max=20,dive,min=1,max=100"`
}

// QuestionConfig declares a single question in the bank.
type QuestionConfig struct {
	// ID uniquely identifies the question across the catalog.
	ID string `yaml:"id" validate:"required,identifier,min=1,max=100"`

	// Text is the prompt presented to the respondent.
	Text string `yaml:"text,omitempty" validate:"max=1000"`

	// Category selects the scoring target kind for this question.
	Category string `yaml:"category" validate:"required,oneof=persona value-axis"`

	// AssociatedKey names the persona ID or value axis ID this
	// question's normalized score contributes to.
	AssociatedKey string `yaml:"associated_key" validate:"required,min=1,max=100"`

	// Reversed marks negatively keyed questions whose raw score is
	// mirrored across the scale before aggregation.
	Reversed bool `yaml:"reversed,omitempty"`
}
