package repositories

import (
	"errors"
	"fmt"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"gorm.io/gorm"
)

// SavedProductRepository defines the interface for the saved-product
// relation. A product's saver set is the set of rows for that product.
type SavedProductRepository interface {
	SaveProduct(saved *models.SavedProduct) error
	UnsaveProduct(userID uint, productID string) error
	IsProductSaved(userID uint, productID string) (bool, error)
	GetSaverIDs(productID string) ([]uint, error)
	GetSavedProductIDs(userID uint) ([]string, error)
	DeleteByProduct(productID string) error
}

// PostgresSavedProductRepository implements SavedProductRepository for PostgreSQL
type PostgresSavedProductRepository struct {
	db *gorm.DB
}

// NewPostgresSavedProductRepository creates a new PostgresSavedProductRepository
func NewPostgresSavedProductRepository(db *gorm.DB) *PostgresSavedProductRepository {
	return &PostgresSavedProductRepository{db: db}
}

func (r *PostgresSavedProductRepository) SaveProduct(saved *models.SavedProduct) error {
	if err := r.db.Create(saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product already saved: %w", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *PostgresSavedProductRepository) UnsaveProduct(userID uint, productID string) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.SavedProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved product: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PostgresSavedProductRepository) IsProductSaved(userID uint, productID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.SavedProduct{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetSaverIDs returns the users who saved the product, oldest save first
func (r *PostgresSavedProductRepository) GetSaverIDs(productID string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.SavedProduct{}).
		Where("product_id = ?", productID).
		Order("id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PostgresSavedProductRepository) GetSavedProductIDs(userID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.SavedProduct{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error
	return ids, err
}

// DeleteByProduct removes every save of the product; part of the
// product-deleted cascade
func (r *PostgresSavedProductRepository) DeleteByProduct(productID string) error {
	return r.db.Where("product_id = ?", productID).Delete(&models.SavedProduct{}).Error
}
