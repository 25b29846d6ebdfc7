package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// PersistenceError reports a document-store write failure.
type PersistenceError struct {
	RecordID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist record %s: %v", e.RecordID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// putItemAPI matches dynamodb.Client's PutItem method so tests can fake it.
type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Persister defines the behaviour required by the ingest coordinator.
type Persister interface {
	Put(ctx context.Context, record MediaRecord) error
}

// Store writes media records to the document store.
type Store struct {
	api   putItemAPI
	table string
}

// NewStore constructs a catalog store for the given table.
func NewStore(api putItemAPI, table string) (*Store, error) {
	if api == nil {
		return nil, errors.New("dynamodb client required")
	}
	if table == "" {
		return nil, errors.New("table required")
	}
	return &Store{api: api, table: table}, nil
}

// Put writes the record with overwrite semantics keyed by record.ID.
func (s *Store) Put(ctx context.Context, record MediaRecord) error {
	if record.ID == "" {
		return &PersistenceError{Err: errors.New("record id required")}
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return &PersistenceError{RecordID: record.ID, Err: fmt.Errorf("marshal record: %w", err)}
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return &PersistenceError{RecordID: record.ID, Err: err}
	}
	return nil
}
