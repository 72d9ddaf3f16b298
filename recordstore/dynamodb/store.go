// Package dynamodb implements recordstore.Store on Amazon DynamoDB.
//
// All record kinds share one table:
//
//	aws dynamodb create-table \
//	  --table-name featsearch-records \
//	  --attribute-definitions AttributeName=pk,AttributeType=S AttributeName=sha256,AttributeType=S \
//	  --key-schema AttributeName=pk,KeyType=HASH AttributeName=sha256,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// pk holds the record kind (recordstore.Table) and sha256 the content key.
// Inserts are conditional puts, so concurrent writers of the same record
// produce exactly one item.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/featsearch/recordstore"
)

const (
	attrPK  = "pk"
	attrKey = "sha256"
)

// Client is the subset of the DynamoDB API used by Store.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Store is a recordstore.Store backed by a DynamoDB table.
type Store struct {
	client    Client
	tableName string
	now       func() time.Time
	insert    expression.Expression
}

var _ recordstore.Store = (*Store)(nil)

// NewStore returns a store writing to tableName.
func NewStore(client Client, tableName string) (*Store, error) {
	insert, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrKey))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("recordstore/dynamodb: build condition: %w", err)
	}
	return &Store{
		client:    client,
		tableName: tableName,
		now:       func() time.Time { return time.Now().UTC() },
		insert:    insert,
	}, nil
}

func (s *Store) put(ctx context.Context, table recordstore.Table, key string, record any) (bool, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return false, fmt.Errorf("recordstore/dynamodb: marshal %s: %w", table, err)
	}
	item[attrPK] = &types.AttributeValueMemberS{Value: string(table)}
	item[attrKey] = &types.AttributeValueMemberS{Value: key}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     item,
		ConditionExpression:      s.insert.Condition(),
		ExpressionAttributeNames: s.insert.Names(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("recordstore/dynamodb: put %s: %w", table, err)
	}
	return true, nil
}

// InsertSpec implements recordstore.Store.
func (s *Store) InsertSpec(ctx context.Context, r recordstore.SpecRecord) (bool, error) {
	return s.put(ctx, recordstore.TableSpecs, r.SHA256(), r)
}

// InsertInput implements recordstore.Store.
func (s *Store) InsertInput(ctx context.Context, r recordstore.InputRecord) (bool, error) {
	if r.Added.IsZero() {
		r.Added = s.now()
	}
	return s.put(ctx, recordstore.TableInputs, r.SHA256(), r)
}

// InsertAccepted implements recordstore.Store.
func (s *Store) InsertAccepted(ctx context.Context, r recordstore.AcceptedRecord) (bool, error) {
	if r.Added.IsZero() {
		r.Added = s.now()
	}
	return s.put(ctx, recordstore.TableAccepted, r.SHA256(), r)
}

// Count implements recordstore.Store.
func (s *Store) Count(ctx context.Context, t recordstore.Table) (int, error) {
	switch t {
	case recordstore.TableSpecs, recordstore.TableInputs, recordstore.TableAccepted:
	default:
		return 0, recordstore.ErrUnknownTable
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrPK).Equal(expression.Value(string(t)))).
		Build()
	if err != nil {
		return 0, fmt.Errorf("recordstore/dynamodb: build key condition: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	})

	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("recordstore/dynamodb: count %s: %w", t, err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// Close implements recordstore.Store. The client is owned by the caller.
func (s *Store) Close() error { return nil }
