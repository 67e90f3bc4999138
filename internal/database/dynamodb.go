package database

import (
	"context"
	"fmt"
	"time"

	appconfig "ridebooking/internal/config"
	"ridebooking/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DynamoStore maps each collection to a table named prefix+collection with
// string partition key "id". DynamoDB has no server clock for attributes,
// so timestamps are stamped by the process right before PutItem.
type DynamoStore struct {
	client *dynamodb.Client
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

func NewDynamoStore(ctx context.Context, cfg appconfig.DynamoDBConfig, logger *zerolog.Logger) (*DynamoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "dynamodb-store").Logger()
	}
	l.Info().Str("region", cfg.Region).Str("table_prefix", cfg.TablePrefix).Msg("dynamodb store initialized")

	return &DynamoStore{client: client, prefix: cfg.TablePrefix, logger: l, now: time.Now}, nil
}

func (s *DynamoStore) table(collection string) string {
	return s.prefix + collection
}

// dynamoItem resolves timestamps to RFC3339 strings and adds the "id" key.
// A nil value becomes a NULL attribute.
func dynamoItem(id string, fields models.Fields, now time.Time) (map[string]types.AttributeValue, error) {
	doc := fields.Resolve(now)
	doc["id"] = id
	for k, v := range doc {
		if ts, ok := v.(time.Time); ok {
			doc[k] = ts.Format(time.RFC3339Nano)
		}
	}

	item, err := attributevalue.MarshalMap(map[string]interface{}(doc))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return item, nil
}

func (s *DynamoStore) put(ctx context.Context, collection, id string, fields models.Fields) error {
	item, err := dynamoItem(id, fields, s.now())
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table(collection)),
		Item:      item,
	})
	return err
}

func (s *DynamoStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	id := uuid.NewString()
	if err := s.put(ctx, collection, id, fields); err != nil {
		return "", fmt.Errorf("put item into %s: %w", s.table(collection), err)
	}
	return id, nil
}

func (s *DynamoStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	if err := s.put(ctx, collection, id, fields); err != nil {
		return fmt.Errorf("put item %s/%s: %w", s.table(collection), id, err)
	}
	return nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("dynamodb ping: %w", err)
	}
	return nil
}

func (s *DynamoStore) Close() error { return nil }
