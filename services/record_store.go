package services

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a record in its attribute-typed form.
type Item = map[string]types.AttributeValue

// ErrConditionFailed marks a conditional write rejected by the store.
// Callers may retry with a different key.
var ErrConditionFailed = errors.New("conditional write rejected")

// ErrRecordNotFound is returned by writes that require an existing record.
var ErrRecordNotFound = errors.New("record not found")

// Condition guards a put. NotExists names an attribute that must be absent.
type Condition struct {
	NotExists string
}

type opKind int

const (
	opSet opKind = iota
	opAdd
	opRemove
)

// UpdateOp is one top-level attribute mutation.
type UpdateOp struct {
	kind  opKind
	attr  string
	value types.AttributeValue
}

// SetAttr overwrites attr with v.
func SetAttr(attr string, v types.AttributeValue) UpdateOp {
	return UpdateOp{kind: opSet, attr: attr, value: v}
}

// AddNumber adds n to a numeric attr, treating a missing attr as 0.
func AddNumber(attr string, n int64) UpdateOp {
	return UpdateOp{kind: opAdd, attr: attr, value: N(n)}
}

// RemoveAttr deletes attr from the record.
func RemoveAttr(attr string) UpdateOp {
	return UpdateOp{kind: opRemove, attr: attr}
}

// Eq is an equality predicate used by scans and index queries.
type Eq struct {
	Attr  string
	Value types.AttributeValue
}

// RecordStore is the document-store contract every service is written against.
// Get returns a nil Item when the key is absent. Update creates the record if needed.
type RecordStore interface {
	Get(ctx context.Context, table string, key Item) (Item, error)
	Put(ctx context.Context, table string, item Item, cond *Condition) error
	Update(ctx context.Context, table string, key Item, ops ...UpdateOp) error
	// SetMapEntry writes map[entry] = v on an existing record, creating the map attribute
	// when missing. It returns ErrRecordNotFound when the record itself is absent.
	SetMapEntry(ctx context.Context, table string, key Item, mapAttr, entry string, v types.AttributeValue) error
	Query(ctx context.Context, table, index string, eq Eq) ([]Item, error)
	Scan(ctx context.Context, table string, filters ...Eq) ([]Item, error)
}
