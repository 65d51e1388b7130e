package config

// Wardfile represents the structure of the ward.yaml configuration file.
// The top level is a mapping from target name to target definition.
type Wardfile map[string]TargetDTO

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Dependencies []string `yaml:"dependencies"`
	InputPaths   []string `yaml:"input_paths"`
	Build        []string `yaml:"build"`
	Service      string   `yaml:"service"`
}
