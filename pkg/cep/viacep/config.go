package viacep

// Config represents the configuration for the ViaCEP client
type Config struct {
	// BaseURL is the ViaCEP API base URL
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
