package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of *dynamodb.Client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore implements RecordStore on DynamoDB.
type DynamoStore struct {
	client DynamoAPI
}

func NewDynamoStore(client DynamoAPI) *DynamoStore {
	return &DynamoStore{client: client}
}

func (s *DynamoStore) Get(ctx context.Context, table string, key Item) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (s *DynamoStore) Put(ctx context.Context, table string, item Item, cond *Condition) error {
	in := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}
	if cond != nil && cond.NotExists != "" {
		in.ConditionExpression = aws.String("attribute_not_exists(#c)")
		in.ExpressionAttributeNames = map[string]string{"#c": cond.NotExists}
	}
	if _, err := s.client.PutItem(ctx, in); err != nil {
		return wrapDynamoErr("put "+table, err)
	}
	return nil
}

func (s *DynamoStore) Update(ctx context.Context, table string, key Item, ops ...UpdateOp) error {
	if len(ops) == 0 {
		return nil
	}
	expr, names, values := buildUpdateExpression(ops)
	in := &dynamodb.UpdateItemInput{
		TableName:                aws.String(table),
		Key:                      key,
		UpdateExpression:         aws.String(expr),
		ExpressionAttributeNames: names,
	}
	if len(values) > 0 {
		in.ExpressionAttributeValues = values
	}
	if _, err := s.client.UpdateItem(ctx, in); err != nil {
		return wrapDynamoErr("update "+table, err)
	}
	return nil
}

// SetMapEntry sets one entry of a map attribute. A nested SET fails on a missing map,
// so the first attempt is guarded by attribute_exists and the fallback writes the whole map.
// Every attempt requires the record to exist.
func (s *DynamoStore) SetMapEntry(ctx context.Context, table string, key Item, mapAttr, entry string, v types.AttributeValue) error {
	keyAttr := keyAttrOf(key)
	names := map[string]string{"#m": mapAttr, "#e": entry}
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String("SET #m.#e = :v"),
		ConditionExpression:       aws.String("attribute_exists(#m)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": v},
	})
	if err == nil {
		return nil
	}
	if !isConditionFailure(err) {
		return wrapDynamoErr("update "+table, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(table),
		Key:                      key,
		UpdateExpression:         aws.String("SET #m = :whole"),
		ConditionExpression:      aws.String("attribute_exists(#k) AND attribute_not_exists(#m)"),
		ExpressionAttributeNames: map[string]string{"#k": keyAttr, "#m": mapAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":whole": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{entry: v}},
		},
	})
	if err != nil && isConditionFailure(err) {
		// either the map appeared between the two writes or the record is missing
		_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(table),
			Key:                       key,
			UpdateExpression:          aws.String("SET #m.#e = :v"),
			ConditionExpression:       aws.String("attribute_exists(#k)"),
			ExpressionAttributeNames:  map[string]string{"#k": keyAttr, "#m": mapAttr, "#e": entry},
			ExpressionAttributeValues: map[string]types.AttributeValue{":v": v},
		})
		if isConditionFailure(err) {
			return fmt.Errorf("update %s: %w", table, ErrRecordNotFound)
		}
	}
	if err != nil {
		return wrapDynamoErr("update "+table, err)
	}
	return nil
}

func keyAttrOf(key Item) string {
	for name := range key {
		return name
	}
	return ""
}

func (s *DynamoStore) Query(ctx context.Context, table, index string, eq Eq) ([]Item, error) {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String("#k = :k"),
		ExpressionAttributeNames:  map[string]string{"#k": eq.Attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":k": eq.Value},
	}
	if index != "" {
		in.IndexName = aws.String(index)
	}

	var items []Item
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s/%s: %w", table, index, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (s *DynamoStore) Scan(ctx context.Context, table string, filters ...Eq) ([]Item, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(table)}
	if len(filters) > 0 {
		names := map[string]string{}
		values := map[string]types.AttributeValue{}
		clauses := make([]string, 0, len(filters))
		for i, f := range filters {
			n, v := fmt.Sprintf("#f%d", i), fmt.Sprintf(":f%d", i)
			names[n] = f.Attr
			values[v] = f.Value
			clauses = append(clauses, n+" = "+v)
		}
		in.FilterExpression = aws.String(strings.Join(clauses, " AND "))
		in.ExpressionAttributeNames = names
		in.ExpressionAttributeValues = values
	}

	var items []Item
	p := dynamodb.NewScanPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func buildUpdateExpression(ops []UpdateOp) (string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var sets, adds, removes []string

	for i, op := range ops {
		n := fmt.Sprintf("#a%d", i)
		v := fmt.Sprintf(":v%d", i)
		names[n] = op.attr
		switch op.kind {
		case opSet:
			values[v] = op.value
			sets = append(sets, n+" = "+v)
		case opAdd:
			values[v] = op.value
			adds = append(adds, n+" "+v)
		case opRemove:
			removes = append(removes, n)
		}
	}

	var parts []string
	if len(sets) > 0 {
		parts = append(parts, "SET "+strings.Join(sets, ", "))
	}
	if len(adds) > 0 {
		parts = append(parts, "ADD "+strings.Join(adds, ", "))
	}
	if len(removes) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(removes, ", "))
	}
	return strings.Join(parts, " "), names, values
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func wrapDynamoErr(op string, err error) error {
	if isConditionFailure(err) {
		return fmt.Errorf("%s: %w", op, ErrConditionFailed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
