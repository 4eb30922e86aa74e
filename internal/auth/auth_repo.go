package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AuthRepository interface {
	GetClientByClientID(ctx context.Context, clientID string) (*Client, error)
	CreateClient(ctx context.Context, c *Client) error
	TouchClient(ctx context.Context, id uint, at time.Time) error
}

type authRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

// GetClientByClientID returns nil, nil when no such client exists.
func (r *authRepository) GetClientByClientID(ctx context.Context, clientID string) (*Client, error) {
	var c Client
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *authRepository) CreateClient(ctx context.Context, c *Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *authRepository) TouchClient(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Client{}).Where("id = ?", id).Update("last_used_at", at).Error
}
