package logger

// Config configures logging output.
type Config struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format" mapstructure:"format"`
	// Output is "stdout" or "stderr".
	Output string `yaml:"output" mapstructure:"output"`
	// NoColor disables console colors.
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
	// Timestamp adds a timestamp field to every event.
	Timestamp bool `yaml:"timestamp" mapstructure:"timestamp"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}
