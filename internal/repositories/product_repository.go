package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProductsByOwner(ctx context.Context, ownerID uint, skip, limit int64) ([]models.Product, error)
	GetProductsByOwners(ctx context.Context, ownerIDs []uint, skip, limit int64) ([]models.Product, error)
	GetAllProducts(ctx context.Context, skip, limit int64) ([]models.Product, error)
	SearchProducts(ctx context.Context, key string, skip, limit int64) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id string, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// MongoProductRepository implements ProductRepository for MongoDB
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoProductRepository
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

// CreateProduct creates a new product in MongoDB
func (r *MongoProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// GetProductByID retrieves a product by ID from MongoDB
func (r *MongoProductRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format: %w", apperrors.ErrValidation)
	}

	var product models.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &product, nil
}

// GetProductsByOwner retrieves one seller's products, newest first
func (r *MongoProductRepository) GetProductsByOwner(ctx context.Context, ownerID uint, skip, limit int64) ([]models.Product, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, skip, limit)
}

// GetProductsByOwners retrieves products from a set of sellers, newest
// first; backs the subscription product feed
func (r *MongoProductRepository) GetProductsByOwners(ctx context.Context, ownerIDs []uint, skip, limit int64) ([]models.Product, error) {
	if len(ownerIDs) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"owner_id": bson.M{"$in": ownerIDs}}, skip, limit)
}

// GetAllProducts retrieves all products with pagination, newest first
func (r *MongoProductRepository) GetAllProducts(ctx context.Context, skip, limit int64) ([]models.Product, error) {
	return r.find(ctx, bson.M{}, skip, limit)
}

// SearchProducts finds products whose name matches the key, case-insensitive
func (r *MongoProductRepository) SearchProducts(ctx context.Context, key string, skip, limit int64) ([]models.Product, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: key, Options: "i"}}
	return r.find(ctx, filter, skip, limit)
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Product, error) {
	products := []models.Product{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct updates an existing product in MongoDB
func (r *MongoProductRepository) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", apperrors.ErrValidation)
	}

	product.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":       product.Name,
			"price":      product.Price,
			"desc":       product.Desc,
			"image":      product.Image,
			"updated_at": product.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteProduct deletes a product from MongoDB
func (r *MongoProductRepository) DeleteProduct(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", apperrors.ErrValidation)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
