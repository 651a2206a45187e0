package repositories

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"shopapi/internal/models"
)

// The in-memory repositories evaluate the same bson filter/sort documents the
// query builder produces, over per-entity field maps.

func matchFilter(fields map[string]interface{}, filter bson.M) bool {
	for name, cond := range filter {
		if !matchCondition(fields[name], cond) {
			return false
		}
	}
	return true
}

func matchCondition(value interface{}, cond interface{}) bool {
	switch ops := cond.(type) {
	case bson.M:
		for op, want := range ops {
			if !applyOperator(op, value, want) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for op, want := range ops {
			if !applyOperator(op, value, want) {
				return false
			}
		}
		return true
	default:
		return applyOperator("$eq", value, cond)
	}
}

func applyOperator(op string, value, want interface{}) bool {
	if op == "$in" {
		list, ok := want.([]interface{})
		if !ok {
			return false
		}
		for _, w := range list {
			if applyOperator("$eq", value, w) {
				return true
			}
		}
		return false
	}

	if av, aok := toFloat(value); aok {
		if bv, bok := toFloat(want); bok {
			switch op {
			case "$eq":
				return av == bv
			case "$ne":
				return av != bv
			case "$gt":
				return av > bv
			case "$gte":
				return av >= bv
			case "$lt":
				return av < bv
			case "$lte":
				return av <= bv
			}
			return false
		}
	}

	as, bs := fmt.Sprintf("%v", value), fmt.Sprintf("%v", want)
	switch op {
	case "$eq":
		return as == bs
	case "$ne":
		return as != bs
	case "$gt":
		return as > bs
	case "$gte":
		return as >= bs
	case "$lt":
		return as < bs
	case "$lte":
		return as <= bs
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case models.Decimal:
		return n.Float64(), true
	case time.Time:
		return float64(n.UnixNano()), true
	}
	return 0, false
}

// sortByFields orders a slice in place according to a bson sort document,
// using the supplied field-map accessor.
func sortByFields[T any](items []T, keys bson.D, fields func(*T) map[string]interface{}) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		fi, fj := fields(&items[i]), fields(&items[j])
		for _, key := range keys {
			dir, _ := key.Value.(int)
			less, equal := compareValues(fi[key.Key], fj[key.Key])
			if equal {
				continue
			}
			if dir < 0 {
				return !less
			}
			return less
		}
		return false
	})
}

func compareValues(a, b interface{}) (less, equal bool) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf, af == bf
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	return as < bs, as == bs
}
