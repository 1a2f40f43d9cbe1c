// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager resolves runtime secrets such as the unlock password.
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	RefreshSecrets(ctx context.Context) error
}

// AWSSecretsManager reads a JSON secret blob from AWS Secrets Manager
// and caches the parsed keys for a short TTL.
type AWSSecretsManager struct {
	client     *secretsmanager.Client
	secretName string
	cache      map[string]string
	cacheMu    sync.RWMutex
	lastFetch  time.Time
	ttl        time.Duration
	logger     *slog.Logger
}

// NewAWSSecretsManager creates a new AWS Secrets Manager client
func NewAWSSecretsManager(region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSecretsManager{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
		cache:      make(map[string]string),
		ttl:        5 * time.Minute,
		logger:     logger,
	}, nil
}

// GetSecret retrieves a single secret key from the named secret blob.
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	sm.cacheMu.RLock()
	if time.Since(sm.lastFetch) < sm.ttl {
		if val, ok := sm.cache[key]; ok {
			sm.cacheMu.RUnlock()
			return val, nil
		}
	}
	sm.cacheMu.RUnlock()

	sm.logger.Info("fetching secrets from AWS Secrets Manager",
		slog.String("secret_name", sm.secretName))

	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	}

	result, err := sm.client.GetSecretValue(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to get secret value: %w", err)
	}

	var secretData map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &secretData); err != nil {
		return "", fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.cacheMu.Lock()
	sm.cache = secretData
	sm.lastFetch = time.Now()
	sm.cacheMu.Unlock()

	val, ok := secretData[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found in %s", key, sm.secretName)
	}
	return val, nil
}

// RefreshSecrets drops the cache so the next read hits AWS again.
func (sm *AWSSecretsManager) RefreshSecrets(ctx context.Context) error {
	sm.cacheMu.Lock()
	sm.cache = make(map[string]string)
	sm.lastFetch = time.Time{}
	sm.cacheMu.Unlock()
	return nil
}

// EnvSecretsManager reads secrets straight from environment variables.
// Used in development where no Secrets Manager is configured.
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates a new environment-based secrets manager
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

// GetSecret retrieves a secret from environment variables
func (em *EnvSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("environment variable %s not set", key)
	}
	return val, nil
}

// RefreshSecrets is a no-op for environment variables
func (em *EnvSecretsManager) RefreshSecrets(ctx context.Context) error {
	return nil
}

// ResolveUnlockPassword returns the effective shop unlock password. When a
// secret name is configured the password is read from AWS Secrets Manager,
// otherwise the value from the environment (or the dev default) is used.
func ResolveUnlockPassword(ctx context.Context, cfg *Config, logger *slog.Logger) (string, error) {
	if cfg.Security.UnlockSecretName == "" {
		return cfg.Security.UnlockPassword, nil
	}

	sm, err := NewAWSSecretsManager(cfg.AWS.Region, cfg.Security.UnlockSecretName, logger)
	if err != nil {
		return "", fmt.Errorf("init secrets manager: %w", err)
	}

	password, err := sm.GetSecret(ctx, "APP_PASSWORD")
	if err != nil {
		return "", fmt.Errorf("resolve unlock password: %w", err)
	}
	return password, nil
}
