package services

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"leetcode-companion/models"
)

func S(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func N(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func Bool(v bool) types.AttributeValue { return &types.AttributeValueMemberBOOL{Value: v} }

// Key builds a single-attribute string key.
func Key(attr, value string) Item {
	return Item{attr: S(value)}
}

func stringAttr(item Item, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// numberValue reads a number stored as N, or as a decimal string. Anything else is 0.
func numberValue(av types.AttributeValue) int64 {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	default:
		return 0
	}
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f)
	}
	return 0
}

func numberAttr(item Item, name string) int64 {
	return numberValue(item[name])
}

// completionFlag accepts a typed BOOL true, or a map wrapping {"BOOL": true}
// left behind by writers that stored the typed form as a plain document.
func completionFlag(av types.AttributeValue) bool {
	switch v := av.(type) {
	case *types.AttributeValueMemberBOOL:
		return v.Value
	case *types.AttributeValueMemberM:
		inner, ok := v.Value["BOOL"].(*types.AttributeValueMemberBOOL)
		return ok && inner.Value
	}
	return false
}

func stringListAttr(item Item, name string) []string {
	out := []string{}
	switch v := item[name].(type) {
	case *types.AttributeValueMemberSS:
		out = append(out, v.Value...)
	case *types.AttributeValueMemberL:
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok {
				out = append(out, s.Value)
			}
		}
	}
	return out
}

func mapAttr(item Item, name string) (map[string]types.AttributeValue, bool) {
	v, ok := item[name].(*types.AttributeValueMemberM)
	if !ok {
		return nil, false
	}
	return v.Value, true
}

// DecodeUser reads a users row; malformed or missing counters read as 0.
func DecodeUser(item Item) models.User {
	return models.User{
		Username: stringAttr(item, "username"),
		GroupID:  stringAttr(item, "group_id"),
		Easy:     numberAttr(item, "easy"),
		Medium:   numberAttr(item, "medium"),
		Hard:     numberAttr(item, "hard"),
		Today:    numberAttr(item, "today"),
		XP:       numberAttr(item, "xp"),
	}
}

// DecodeDaily reads a daily row into the uniform shape.
func DecodeDaily(item Item) models.DailyChallenge {
	d := models.DailyChallenge{
		Date:       stringAttr(item, "date"),
		Slug:       stringAttr(item, "slug"),
		Title:      stringAttr(item, "title"),
		FrontendID: stringAttr(item, "frontendId"),
		Tags:       stringListAttr(item, "tags"),
		Users:      map[string]bool{},
	}
	if d.FrontendID == "" {
		if n, ok := item["frontendId"].(*types.AttributeValueMemberN); ok {
			d.FrontendID = n.Value
		}
	}
	if users, ok := mapAttr(item, "users"); ok {
		d.HasUsers = true
		for name, flag := range users {
			if completionFlag(flag) {
				d.Users[name] = true
			}
		}
	}
	return d
}

// DecodeBounty reads a bounties row. Progress entries that are not numbers are skipped.
func DecodeBounty(item Item) models.Bounty {
	b := models.Bounty{
		BountyID:    stringAttr(item, "bountyId"),
		Count:       numberAttr(item, "count"),
		ExpiryDate:  numberAttr(item, "expirydate"),
		StartDate:   numberAttr(item, "startdate"),
		XP:          numberAttr(item, "xp"),
		Description: stringAttr(item, "description"),
		Difficulty:  stringAttr(item, "difficulty"),
		Name:        stringAttr(item, "name"),
		Tags:        stringListAttr(item, "tags"),
		Title:       stringAttr(item, "title"),
		Type:        stringAttr(item, "type"),
		Users:       map[string]int64{},
	}
	if users, ok := mapAttr(item, "users"); ok {
		for name, v := range users {
			if n, ok := v.(*types.AttributeValueMemberN); ok {
				b.Users[name] = numberValue(n)
			}
		}
	}
	return b
}

// SimplifyItem converts a typed record into plain JSON-friendly values.
func SimplifyItem(item Item) (map[string]any, error) {
	out := map[string]any{}
	if len(item) == 0 {
		return out, nil
	}
	if err := attributevalue.UnmarshalMap(item, &out); err != nil {
		return nil, err
	}
	return out, nil
}
