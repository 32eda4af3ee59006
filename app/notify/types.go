package notify

// SinkConfig is one sink declaration loaded from a yaml file in the sinks
// directory. The sink name is derived from the filename.
type SinkConfig struct {
	Name    string `yaml:"-"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}
