package config

// Security configures the security module.
type Security struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	DetectHardcodedSecrets     bool `yaml:"detectHardcodedSecrets" json:"detectHardcodedSecrets"`
	DetectInsecureDeserialization bool `yaml:"detectInsecureDeserialization" json:"detectInsecureDeserialization"`
	DetectReact2Shell          bool `yaml:"detectReact2Shell" json:"detectReact2Shell"`
	DetectInsecureJWT          bool `yaml:"detectInsecureJWT" json:"detectInsecureJWT"`
	DetectMissingEnvCheck      bool `yaml:"detectMissingEnvCheck" json:"detectMissingEnvCheck"`
	DetectHardcodedProductionURL bool `yaml:"detectHardcodedProductionURL" json:"detectHardcodedProductionURL"`

	SecretEntropyThreshold float64 `yaml:"secretEntropyThreshold" json:"secretEntropyThreshold"`
}

// DefaultSecurity returns the default security configuration.
func DefaultSecurity() Security {
	return Security{
		Enabled:                       true,
		DetectHardcodedSecrets:        true,
		DetectInsecureDeserialization: true,
		DetectReact2Shell:             true,
		DetectInsecureJWT:             true,
		DetectMissingEnvCheck:         true,
		DetectHardcodedProductionURL:  true,
		SecretEntropyThreshold:        4.5,
	}
}
