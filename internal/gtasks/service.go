package gtasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

// Config holds the credentials for the Google Tasks API.
type Config struct {
	// CredentialsFile is the OAuth client secret JSON downloaded from the
	// Google Cloud console.
	CredentialsFile string
	// RefreshToken is a long-lived token granted for the tasks scope.
	RefreshToken string
	// DefaultList receives tasks whose matter has no project. "@default"
	// is the user's primary list.
	DefaultList string
	// Endpoint overrides the API base URL.
	Endpoint string
	Timeout  time.Duration
}

// NewService builds an authenticated Tasks service. The access token is
// refreshed from cfg.RefreshToken as needed.
func NewService(ctx context.Context, cfg Config) (*tasks.Service, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", cfg.CredentialsFile, err)
	}
	oauthCfg, err := google.ConfigFromJSON(b, tasks.TasksScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("google tasks refresh token is not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	// oauth2 picks up the base client from the context for token refreshes.
	base := &http.Client{Timeout: timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	httpClient := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	httpClient.Timeout = timeout

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	srv, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Tasks service: %w", err)
	}
	return srv, nil
}
