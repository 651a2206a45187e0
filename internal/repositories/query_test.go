package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"shopapi/internal/repositories"
)

func TestBuildFilter(t *testing.T) {
	// Empty input means match everything.
	filter, err := repositories.BuildFilter("", repositories.ProductQueryFields)
	assert.NoError(t, err)
	assert.Equal(t, bson.M{}, filter)

	// Scalar values become equality predicates.
	filter, err = repositories.BuildFilter(`{"category":"books"}`, repositories.ProductQueryFields)
	assert.NoError(t, err)
	assert.Equal(t, bson.M{"category": "books"}, filter)

	// Comparison operators pass through when whitelisted.
	filter, err = repositories.BuildFilter(
		`{"price":{"$gte":10,"$lt":50},"stock":{"$gt":0}}`, repositories.ProductQueryFields)
	assert.NoError(t, err)
	assert.Equal(t, bson.M{
		"price": bson.M{"$gte": float64(10), "$lt": float64(50)},
		"stock": bson.M{"$gt": float64(0)},
	}, filter)

	// $in is allowed.
	filter, err = repositories.BuildFilter(`{"category":{"$in":["books","toys"]}}`, repositories.ProductQueryFields)
	assert.NoError(t, err)
	assert.Equal(t, bson.M{"category": bson.M{"$in": []interface{}{"books", "toys"}}}, filter)
}

func TestBuildFilterRejections(t *testing.T) {
	cases := []string{
		`not json`,
		`{"password":"x"}`,                  // field outside the whitelist
		`{"$where":"sleep(1000)"}`,          // operator in field position
		`{"name":{"$regex":".*"}}`,          // operator outside the whitelist
		`{"email":{"$ne":null,"$where":1}}`, // one bad operator poisons the document
	}
	for _, raw := range cases {
		_, err := repositories.BuildFilter(raw, repositories.UserQueryFields)
		assert.Error(t, err, "filter %s should be rejected", raw)
	}
}

func TestBuildSort(t *testing.T) {
	sort, err := repositories.BuildSort("", repositories.UserQueryFields)
	assert.NoError(t, err)
	assert.Empty(t, sort)

	sort, err = repositories.BuildSort(`{"email":1}`, repositories.UserQueryFields)
	assert.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, sort)

	sort, err = repositories.BuildSort(`{"firstName":-1}`, repositories.UserQueryFields)
	assert.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "firstName", Value: -1}}, sort)

	_, err = repositories.BuildSort(`{"email":2}`, repositories.UserQueryFields)
	assert.Error(t, err)

	_, err = repositories.BuildSort(`{"password":1}`, repositories.UserQueryFields)
	assert.Error(t, err)

	_, err = repositories.BuildSort(`{"email":"asc"}`, repositories.UserQueryFields)
	assert.Error(t, err)
}
