package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage holds the image metadata attached to a product. The blob
// itself lives in external storage; only the URI is served.
type ProductImage struct {
	FileName string `json:"file_name,omitempty" bson:"file_name,omitempty"`
	URI      string `json:"uri,omitempty" bson:"uri,omitempty"`
	FileType string `json:"file_type,omitempty" bson:"file_type,omitempty"`
	FileSize string `json:"file_size,omitempty" bson:"file_size,omitempty"`
}

// Product represents a marketplace listing stored in MongoDB
type Product struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   uint               `json:"owner_id" bson:"owner_id"` // Seller's user ID
	Name      string             `json:"name" bson:"name"`
	Price     string             `json:"price" bson:"price"`
	PricePer  string             `json:"price_per" bson:"price_per"` // Unit the price applies to (kg, piece, ...)
	Desc      string             `json:"desc" bson:"desc"`
	Image     ProductImage       `json:"image" bson:"image"`
	ExpDate   time.Time          `json:"exp_date,omitempty" bson:"exp_date,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateProductRequest defines the request body for creating a new product
type CreateProductRequest struct {
	Name     string       `json:"name" validate:"required,min=1,max=100"`
	Price    string       `json:"price" validate:"required"`
	PricePer string       `json:"price_per" validate:"required"`
	Desc     string       `json:"desc,omitempty" validate:"omitempty,max=1000"`
	Image    ProductImage `json:"image,omitempty"`
	ExpDate  time.Time    `json:"exp_date,omitempty"`
}

// UpdateProductRequest defines the request body for updating an existing product
type UpdateProductRequest struct {
	Name  string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Price string        `json:"price,omitempty"`
	Desc  string        `json:"desc,omitempty" validate:"omitempty,max=1000"`
	Image *ProductImage `json:"image,omitempty"`
}
