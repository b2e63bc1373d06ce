// utils/dynamo.go
package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoSettings is the subset of app config needed to reach the document store.
type DynamoSettings struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the service URL, e.g. for DynamoDB Local.
	Endpoint string
}

// NewDynamoClient builds a DynamoDB client. Static credentials are used when both keys
// are set; otherwise the default credential chain applies.
func NewDynamoClient(ctx context.Context, s DynamoSettings) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s.Region),
	}
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKeyID, s.SecretAccessKey, "",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	}), nil
}
