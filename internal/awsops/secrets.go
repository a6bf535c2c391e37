// Package awsops bundles the AWS operational helpers: Secrets Manager
// access, cost reporting, and the resource cleanup runner.
package awsops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretsAPI is the subset of the Secrets Manager client we use.
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	DeleteSecret(ctx context.Context, params *secretsmanager.DeleteSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
}

// SecretsClient reads and writes Secrets Manager secrets.
type SecretsClient struct {
	api secretsAPI
}

// NewSecretsClient creates a client using the default AWS credential chain.
func NewSecretsClient(ctx context.Context, region string) (*SecretsClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &SecretsClient{api: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewSecretsClientWithAPI injects a custom API implementation (tests).
func NewSecretsClientWithAPI(api secretsAPI) *SecretsClient {
	return &SecretsClient{api: api}
}

// GetSecret fetches the secret string value.
func (c *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}
	return *out.SecretString, nil
}

// GetSecretJSON fetches a secret and unmarshals its JSON value into out.
func (c *SecretsClient) GetSecretJSON(ctx context.Context, name string, out any) error {
	value, err := c.GetSecret(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("secret %s is not valid JSON: %w", name, err)
	}
	return nil
}

// CreateSecret stores a new secret.
func (c *SecretsClient) CreateSecret(ctx context.Context, name, value string) error {
	_, err := c.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("failed to create secret %s: %w", name, err)
	}
	return nil
}

// DeleteSecret removes a secret without a recovery window.
func (c *SecretsClient) DeleteSecret(ctx context.Context, name string) error {
	_, err := c.api.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(name),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete secret %s: %w", name, err)
	}
	return nil
}

// ListSecretNames returns the names of all secrets, paginating as needed.
func (c *SecretsClient) ListSecretNames(ctx context.Context) ([]string, error) {
	var names []string
	var token *string
	for {
		out, err := c.api.ListSecrets(ctx, &secretsmanager.ListSecretsInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("failed to list secrets: %w", err)
		}
		for _, secret := range out.SecretList {
			if secret.Name != nil {
				names = append(names, *secret.Name)
			}
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	return names, nil
}
