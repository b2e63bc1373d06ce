package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"leetcode-companion/config"
)

// MemoryStore is an in-process RecordStore for offline runs and tests.
// Tables are created on first use; keyAttrs maps table -> partition key name.
type MemoryStore struct {
	mu       sync.Mutex
	keyAttrs map[string]string
	indexes  map[string]string
	tables   map[string]map[string]Item
}

// NewMemoryStore builds an empty store. indexes maps index name -> indexed attribute.
func NewMemoryStore(keyAttrs, indexes map[string]string) *MemoryStore {
	return &MemoryStore{
		keyAttrs: keyAttrs,
		indexes:  indexes,
		tables:   map[string]map[string]Item{},
	}
}

// NewMemoryStoreFor lays out the four application tables and the membership index.
func NewMemoryStoreFor(tables config.Tables) *MemoryStore {
	return NewMemoryStore(
		map[string]string{
			tables.Users:    "username",
			tables.Groups:   "group_id",
			tables.Daily:    "date",
			tables.Bounties: "bountyId",
		},
		map[string]string{tables.GroupIndex: "group_id"},
	)
}

func (m *MemoryStore) keyOf(table string, item Item) (string, error) {
	attr, ok := m.keyAttrs[table]
	if !ok {
		return "", fmt.Errorf("memory store: unknown table %q", table)
	}
	v, ok := item[attr]
	if !ok {
		return "", fmt.Errorf("memory store: %s: missing key %q", table, attr)
	}
	return attrString(v), nil
}

func (m *MemoryStore) table(name string) map[string]Item {
	t, ok := m.tables[name]
	if !ok {
		t = map[string]Item{}
		m.tables[name] = t
	}
	return t
}

func (m *MemoryStore) Get(_ context.Context, table string, key Item) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, err := m.keyOf(table, key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table(table)[k]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

func (m *MemoryStore) Put(_ context.Context, table string, item Item, cond *Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, err := m.keyOf(table, item)
	if err != nil {
		return err
	}
	t := m.table(table)
	if cond != nil && cond.NotExists != "" {
		if existing, ok := t[k]; ok {
			if _, has := existing[cond.NotExists]; has {
				return fmt.Errorf("put %s: %w", table, ErrConditionFailed)
			}
		}
	}
	t[k] = cloneItem(item)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, table string, key Item, ops ...UpdateOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, err := m.keyOf(table, key)
	if err != nil {
		return err
	}
	t := m.table(table)
	item, ok := t[k]
	if !ok {
		item = cloneItem(key)
	} else {
		item = cloneItem(item)
	}

	for _, op := range ops {
		switch op.kind {
		case opSet:
			item[op.attr] = op.value
		case opAdd:
			cur, ok := item[op.attr]
			if ok {
				if _, isNum := cur.(*types.AttributeValueMemberN); !isNum {
					return fmt.Errorf("update %s: ADD on non-number %q", table, op.attr)
				}
			}
			item[op.attr] = N(numberValue(cur) + numberValue(op.value))
		case opRemove:
			delete(item, op.attr)
		}
	}
	t[k] = item
	return nil
}

func (m *MemoryStore) SetMapEntry(_ context.Context, table string, key Item, mapAttr, entry string, v types.AttributeValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, err := m.keyOf(table, key)
	if err != nil {
		return err
	}
	t := m.table(table)
	cur, ok := t[k]
	if !ok {
		return fmt.Errorf("update %s: %w", table, ErrRecordNotFound)
	}
	item := cloneItem(cur)

	next := map[string]types.AttributeValue{}
	if cur, ok := item[mapAttr].(*types.AttributeValueMemberM); ok {
		for name, val := range cur.Value {
			next[name] = val
		}
	}
	next[entry] = v
	item[mapAttr] = &types.AttributeValueMemberM{Value: next}
	t[k] = item
	return nil
}

func (m *MemoryStore) Query(_ context.Context, table, index string, eq Eq) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index != "" {
		attr, ok := m.indexes[index]
		if !ok {
			return nil, fmt.Errorf("query %s: unknown index %q", table, index)
		}
		if attr != eq.Attr {
			return nil, fmt.Errorf("query %s/%s: key condition must use %q", table, index, attr)
		}
	}
	return m.matching(table, []Eq{eq}), nil
}

func (m *MemoryStore) Scan(_ context.Context, table string, filters ...Eq) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.matching(table, filters), nil
}

// matching returns clones of every row satisfying all filters, in key order.
func (m *MemoryStore) matching(table string, filters []Eq) []Item {
	t := m.table(table)
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Item
	for _, k := range keys {
		item := t[k]
		ok := true
		for _, f := range filters {
			if !attrEqual(item[f.Attr], f.Value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, cloneItem(item))
		}
	}
	return out
}

func cloneItem(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func attrString(v types.AttributeValue) string {
	switch t := v.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + t.Value
	case *types.AttributeValueMemberN:
		return "N:" + t.Value
	case *types.AttributeValueMemberBOOL:
		return "BOOL:" + strconv.FormatBool(t.Value)
	}
	return fmt.Sprintf("%T", v)
}

func attrEqual(a, b types.AttributeValue) bool {
	if a == nil || b == nil {
		return false
	}
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && numberValue(av) == numberValue(bv)
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	}
	return false
}
