package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvConsumerKey       = "FAVDUPES_CONSUMER_KEY"
	EnvConsumerSecret    = "FAVDUPES_CONSUMER_SECRET"
	EnvAccessToken       = "FAVDUPES_ACCESS_TOKEN"
	EnvAccessTokenSecret = "FAVDUPES_ACCESS_TOKEN_SECRET"
)

// EnvironmentStore is a read-only CredentialStore over FAVDUPES_* variables.
// It always answers as the default profile.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credentials when all four are set
func (e *EnvironmentStore) Retrieve(profile string) (*Credentials, error) {
	if profile != "" && profile != DefaultProfile {
		return nil, ErrCredentialsNotFound
	}

	creds := &Credentials{
		Profile:           DefaultProfile,
		ConsumerKey:       os.Getenv(EnvConsumerKey),
		ConsumerSecret:    os.Getenv(EnvConsumerSecret),
		AccessToken:       os.Getenv(EnvAccessToken),
		AccessTokenSecret: os.Getenv(EnvAccessTokenSecret),
	}
	if creds.Validate() != nil {
		return nil, ErrCredentialsNotFound
	}

	// Zero time so any stored profile of the same name wins in List
	creds.LastModified = time.Time{}
	return creds, nil
}

// List returns the environment profile if present
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(profile string) bool {
	_, err := e.Retrieve(profile)
	return err == nil
}
