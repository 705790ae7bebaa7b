package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/events/internal/models"
)

// TokenRepository defines data access for API tokens
type TokenRepository interface {
	Create(ctx context.Context, token *models.APIToken) error
	Save(ctx context.Context, token *models.APIToken) error
	FindByToken(ctx context.Context, token string) (*models.APIToken, error)
	List(ctx context.Context) ([]models.APIToken, error)
	Delete(ctx context.Context, id uint) error
}

// tokenRepository implements TokenRepository
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Create inserts a new API token
func (r *tokenRepository) Create(ctx context.Context, token *models.APIToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return errors.Wrap(err, "failed to create API token")
	}
	return nil
}

// Save persists all fields of an existing API token
func (r *tokenRepository) Save(ctx context.Context, token *models.APIToken) error {
	if err := r.db.WithContext(ctx).Save(token).Error; err != nil {
		return errors.Wrap(err, "failed to save API token")
	}
	return nil
}

// FindByToken finds an API token by its opaque value
func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*models.APIToken, error) {
	var apiToken models.APIToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&apiToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find API token")
	}
	return &apiToken, nil
}

// List returns all API tokens
func (r *tokenRepository) List(ctx context.Context) ([]models.APIToken, error) {
	var tokens []models.APIToken
	if err := r.db.WithContext(ctx).Order("id").Find(&tokens).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list API tokens")
	}
	return tokens, nil
}

// Delete removes an API token by ID
func (r *tokenRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.APIToken{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete API token")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
