package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog entry in the store.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required,min=3,max=30"`
	Description string             `json:"description" bson:"description" validate:"required"`
	Price       Decimal            `json:"price" bson:"price" validate:"-"`
	Category    string             `json:"category" bson:"category" validate:"required"`
	Stock       int                `json:"stock" bson:"stock" validate:"gte=0"`
	Rating      float64            `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	Image       string             `json:"image" bson:"image" validate:"required"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
