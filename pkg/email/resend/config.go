package resend

// Config represents the configuration for the Resend client
type Config struct {
	// APIKey is the Resend API key
	APIKey string

	// From is the default sender, e.g. "Shop <orders@example.com>"
	From string

	// BaseURL is the Resend API base URL
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrInvalidRequest
	}
	if c.From == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
