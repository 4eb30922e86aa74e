package auth

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Client is an API consumer authenticating with a client id and secret.
type Client struct {
	gorm.Model
	ClientID   string     `json:"client_id" gorm:"uniqueIndex;not null"`
	SecretHash string     `json:"-" gorm:"not null"`
	Name       string     `json:"name,omitempty"`
	Role       string     `json:"role" gorm:"not null;default:'client'"`
	Active     bool       `json:"active" gorm:"not null;default:true"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type TokenRequest struct {
	ClientID     string `json:"client_id" binding:"required" example:"analytics-desk"`
	ClientSecret string `json:"client_secret" binding:"required" example:"s3cr3t"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"Bearer"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CreateClientRequest struct {
	ClientID string `json:"client_id" binding:"required,min=3,max=64,printascii" example:"analytics-desk"`
	Name     string `json:"name,omitempty" binding:"max=120"`
	Role     string `json:"role,omitempty" binding:"omitempty,oneof=client admin"`
}

// CreateClientResponse carries the generated secret; it is shown only once.
type CreateClientResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Role         string `json:"role"`
}
