package config

// Laziness configures the laziness module.
type Laziness struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Patterns are placeholder-comment regexes (case-insensitive).
	Patterns []string `yaml:"patterns" json:"patterns"`

	DetectAIPreambles        bool `yaml:"detectAIPreambles" json:"detectAIPreambles"`
	DetectHollowFunctions    bool `yaml:"detectHollowFunctions" json:"detectHollowFunctions"`
	DetectMockImplementations bool `yaml:"detectMockImplementations" json:"detectMockImplementations"`
	DetectPlaceholderComments bool `yaml:"detectPlaceholderComments" json:"detectPlaceholderComments"`
	DetectOverCommenting      bool `yaml:"detectOverCommenting" json:"detectOverCommenting"`
	DetectUnloggedErrors      bool `yaml:"detectUnloggedErrors" json:"detectUnloggedErrors"`

	CommentDensityThreshold float64 `yaml:"commentDensityThreshold" json:"commentDensityThreshold"`
}

// DefaultPlaceholderPatterns is the default set of placeholder-comment
// regexes.
func DefaultPlaceholderPatterns() []string {
	return []string{
		`TODO:?\s*implement`,
		`FIXME:?\s*implement`,
		`placeholder`,
		`not implemented`,
		`stub(bed)? (implementation|function|method)`,
		`will be implemented later`,
		`to be (implemented|completed|filled in)`,
		`implement this`,
		`add (your|the) (logic|implementation) here`,
		`replace (this|with) (your|actual) (code|implementation)`,
	}
}

// DefaultLaziness returns the default laziness configuration.
func DefaultLaziness() Laziness {
	return Laziness{
		Enabled:                   true,
		Patterns:                  DefaultPlaceholderPatterns(),
		DetectAIPreambles:         true,
		DetectHollowFunctions:     true,
		DetectMockImplementations: true,
		DetectPlaceholderComments: true,
		DetectOverCommenting:      true,
		DetectUnloggedErrors:      true,
		CommentDensityThreshold:   0.20,
	}
}
