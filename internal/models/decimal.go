package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decimal is an exact decimal value stored as a MongoDB Decimal128 while
// presenting plain JSON numbers on the API surface. Decimal128 also encodes
// NaN and infinities; those are rejected at construction because they have
// no JSON representation and would poison every response carrying the
// document.
type Decimal struct {
	d primitive.Decimal128
}

// NewDecimal parses a finite decimal value from its string representation.
func NewDecimal(s string) (Decimal, error) {
	parsed, err := primitive.ParseDecimal128(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	d := Decimal{d: parsed}
	if !d.finite() {
		return Decimal{}, fmt.Errorf("decimal %q is not a finite number", s)
	}
	return d, nil
}

func (d Decimal) finite() bool {
	f, err := strconv.ParseFloat(d.d.String(), 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (d Decimal) String() string {
	return d.d.String()
}

// IsZero reports whether the value was never set.
func (d Decimal) IsZero() bool {
	return d.d == primitive.Decimal128{}
}

// IsNegative reports whether the value is strictly below zero. A negative
// zero compares equal to zero.
func (d Decimal) IsNegative() bool {
	bi, _, err := d.d.BigInt()
	if err != nil {
		return strings.HasPrefix(d.d.String(), "-")
	}
	return bi.Sign() < 0
}

// Float64 returns an approximation for comparisons; the stored value keeps
// full precision.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.d.String(), 64)
	return f
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.finite() {
		return nil, fmt.Errorf("decimal %q is not a finite number", d.d.String())
	}
	return []byte(d.d.String()), nil
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := NewDecimal(s)
	if err != nil {
		return err
	}
	d.d = parsed.d
	return nil
}

func (d Decimal) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.d)
}

func (d *Decimal) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	return raw.Unmarshal(&d.d)
}
