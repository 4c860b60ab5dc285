package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerOption configures LoadSecretsManager.
type SecretsManagerOption func(*secretsManagerSettings)

type secretsManagerSettings struct {
	region       string
	accessKey    string
	secretKey    string
	sessionToken string
	client       SecretsManagerAPI
}

// WithRegion sets the AWS region.
func WithRegion(region string) SecretsManagerOption {
	return func(s *secretsManagerSettings) {
		s.region = region
	}
}

// WithStaticCredentials uses explicit AWS credentials instead of the
// default credential chain.
func WithStaticCredentials(accessKey, secretKey, sessionToken string) SecretsManagerOption {
	return func(s *secretsManagerSettings) {
		s.accessKey = accessKey
		s.secretKey = secretKey
		s.sessionToken = sessionToken
	}
}

// WithSecretsManagerClient uses client instead of building one from the
// AWS configuration.
func WithSecretsManagerClient(client SecretsManagerAPI) SecretsManagerOption {
	return func(s *secretsManagerSettings) {
		s.client = client
	}
}

// LoadSecretsManager fetches secretID once and returns its settings. The
// secret must be a JSON object; settings are read from its "postageapp"
// member when present, otherwise from the top level.
func LoadSecretsManager(ctx context.Context, secretID string, opts ...SecretsManagerOption) (Map, error) {
	if secretID == "" {
		return nil, errors.New("secret id is required")
	}

	s := &secretsManagerSettings{}
	for _, opt := range opts {
		opt(s)
	}

	client := s.client
	if client == nil {
		c, err := newSecretsManagerClient(ctx, s)
		if err != nil {
			return nil, err
		}
		client = c
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretID)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(*out.SecretString), &doc); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object: %w", secretID, err)
	}
	if m := namespaced(doc); m != nil {
		return m, nil
	}
	return Map(doc), nil
}

func newSecretsManagerClient(ctx context.Context, s *secretsManagerSettings) (*secretsmanager.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if s.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if s.accessKey != "" {
		if s.secretKey == "" {
			return nil, errors.New("secret key is required when access key is provided")
		}
		accessKey, secretKey, sessionToken := s.accessKey, s.secretKey, s.sessionToken
		cfg.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				SessionToken:    sessionToken,
			}, nil
		})
	}

	return secretsmanager.NewFromConfig(cfg), nil
}
