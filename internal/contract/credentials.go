package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// ErrMissingCredential is returned when no API token is present in the environment.
var ErrMissingCredential = errors.New("G_TOKEN environment variable not set")

// Credentials holds secrets that are only ever read from the environment.
type Credentials struct {
	Token      string `envconfig:"G_TOKEN"`
	PulseToken string `envconfig:"PULSE_TOKEN"`
}

// LoadCredentials reads the API token from G_TOKEN, falling back to PULSE_TOKEN.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process("", &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	c.Token = strings.TrimSpace(c.Token)
	if c.Token == "" {
		c.Token = strings.TrimSpace(c.PulseToken)
	}
	if c.Token == "" {
		return Credentials{}, ErrMissingCredential
	}
	return c, nil
}
