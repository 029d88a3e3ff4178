package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marketplace-verify/internal/domain"
)

// RecordRepo provides typed DynamoDB operations for the verification
// records table. The key is always the lowercase Reddit username.
type RecordRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRecordRepo(client *dynamodb.Client, tableName string) *RecordRepo {
	return &RecordRepo{client: client, tableName: tableName}
}

func (r *RecordRepo) Get(ctx context.Context, username string) (*domain.VerificationRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("username", domain.CanonicalUsername(username)),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("record %q: %w", username, domain.ErrNotFound)
	}
	var rec domain.VerificationRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert creates a new record and fails with ErrConflict if one already
// exists for the username.
func (r *RecordRepo) Insert(ctx context.Context, rec *domain.VerificationRecord) error {
	rec.Username = domain.CanonicalUsername(rec.Username)
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(username)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return fmt.Errorf("record %q exists: %w", rec.Username, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// Put replaces the whole record (last-writer-wins).
func (r *RecordRepo) Put(ctx context.Context, rec *domain.VerificationRecord) error {
	rec.Username = domain.CanonicalUsername(rec.Username)
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Update performs a read-merge-write: it fetches the current record,
// applies mutate, and writes the whole record back. This is the only
// update primitive; callers must not assume any stale in-memory copy.
func (r *RecordRepo) Update(ctx context.Context, username string, mutate func(*domain.VerificationRecord)) (*domain.VerificationRecord, error) {
	rec, err := r.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	mutate(rec)
	if err := r.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
