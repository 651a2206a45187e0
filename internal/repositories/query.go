package repositories

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Fields clients may filter or sort on, per collection. Anything outside
// these sets never reaches the store.
var (
	UserQueryFields = map[string]bool{
		"firstName": true,
		"lastName":  true,
		"email":     true,
	}
	ProductQueryFields = map[string]bool{
		"name":     true,
		"category": true,
		"price":    true,
		"stock":    true,
		"rating":   true,
	}
)

var allowedOperators = map[string]bool{
	"$eq":  true,
	"$ne":  true,
	"$gt":  true,
	"$gte": true,
	"$lt":  true,
	"$lte": true,
	"$in":  true,
}

// BuildFilter parses a client-supplied JSON filter fragment into a bson
// document. Each key must be a whitelisted field; a value is either a scalar
// (equality) or an object of whitelisted comparison operators.
func BuildFilter(raw string, allowed map[string]bool) (bson.M, error) {
	if raw == "" {
		return bson.M{}, nil
	}
	var in map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("malformed filter: %w", err)
	}
	out := bson.M{}
	for field, cond := range in {
		if !allowed[field] {
			return nil, fmt.Errorf("filtering on field %q is not allowed", field)
		}
		switch c := cond.(type) {
		case map[string]interface{}:
			ops := bson.M{}
			for op, v := range c {
				if !allowedOperators[op] {
					return nil, fmt.Errorf("filter operator %q is not allowed", op)
				}
				ops[op] = v
			}
			out[field] = ops
		default:
			out[field] = cond
		}
	}
	return out, nil
}

// BuildSort parses a client-supplied JSON sort fragment, e.g.
// {"email": 1, "firstName": -1}, over whitelisted fields.
func BuildSort(raw string, allowed map[string]bool) (bson.D, error) {
	if raw == "" {
		return bson.D{}, nil
	}
	var in map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("malformed sort: %w", err)
	}
	out := bson.D{}
	for field, dir := range in {
		if !allowed[field] {
			return nil, fmt.Errorf("sorting on field %q is not allowed", field)
		}
		n, ok := dir.(float64)
		if !ok || (n != 1 && n != -1) {
			return nil, fmt.Errorf("sort direction for %q must be 1 or -1", field)
		}
		out = append(out, bson.E{Key: field, Value: int(n)})
	}
	return out, nil
}
