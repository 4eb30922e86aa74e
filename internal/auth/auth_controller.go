package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/config"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/responses"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/token"
	pkgutils "github.com/DhavalSuthar-24/miow-forecast/pkg/utils"
	"github.com/DhavalSuthar-24/miow-forecast/utils"
)

const generatedSecretLength = 40

var ErrClientExists = errors.New("auth: client already exists")

type AuthController struct {
	repo   AuthRepository
	cfg    *config.Config
	logger zerolog.Logger
}

func NewAuthController(repo AuthRepository, cfg *config.Config, logger zerolog.Logger) *AuthController {
	return &AuthController{repo: repo, cfg: cfg, logger: logger}
}

// @Summary      Issue an access token
// @Description  Exchange a client id and secret for a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  TokenRequest  true  "Client credentials"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  map[string]interface{}  "Invalid input"
// @Failure      401  {object}  map[string]interface{}  "Invalid credentials"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /auth/token [post]
func (ac *AuthController) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	client, err := ac.repo.GetClientByClientID(c.Request.Context(), req.ClientID)
	if err != nil {
		ac.logger.Error().Err(err).Msg("failed to load client")
		responses.InternalServerError(c, "")
		return
	}
	// Same answer for unknown, inactive and wrong secret.
	if client == nil || !client.Active || !utils.CheckSecret(client.SecretHash, req.ClientSecret) {
		responses.Unauthorized(c, "Invalid credentials")
		return
	}

	signed, expiresAt, err := token.GenerateJWT(client.ClientID, client.Role, ac.cfg.JWT.AccessTokenSecret, ac.cfg.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		ac.logger.Error().Err(err).Msg("failed to sign token")
		responses.InternalServerError(c, "Token generation failed")
		return
	}

	if err := ac.repo.TouchClient(c.Request.Context(), client.ID, time.Now()); err != nil {
		ac.logger.Warn().Err(err).Str("client_id", client.ClientID).Msg("failed to update last use")
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// @Summary      Register an API client
// @Description  Admin only. Returns a generated secret that cannot be retrieved later.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        client  body  CreateClientRequest  true  "Client"
// @Success      201  {object}  CreateClientResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /auth/clients [post]
func (ac *AuthController) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	secret := pkgutils.GenerateRandomToken(generatedSecretLength)
	if secret == "" {
		responses.InternalServerError(c, "Failed to generate secret")
		return
	}
	client, err := RegisterClient(c.Request.Context(), ac.repo, req.ClientID, req.Name, secret, req.Role, ac.cfg.Auth.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrClientExists) {
			responses.ErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		ac.logger.Error().Err(err).Msg("failed to register client")
		responses.InternalServerError(c, "")
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, CreateClientResponse{
		ClientID:     client.ClientID,
		ClientSecret: secret,
		Role:         client.Role,
	})
}

// RegisterClient stores a new client with a bcrypt hash of secret.
func RegisterClient(ctx context.Context, repo AuthRepository, clientID, name, secret, role string, cost int) (*Client, error) {
	existing, err := repo.GetClientByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrClientExists
	}
	if role == "" {
		role = RoleClient
	}
	hash, err := utils.HashSecret(secret, cost)
	if err != nil {
		return nil, err
	}
	client := &Client{ClientID: clientID, Name: name, SecretHash: hash, Role: role, Active: true}
	if err := repo.CreateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Bootstrap creates the configured admin client if it is missing.
func Bootstrap(ctx context.Context, repo AuthRepository, cfg *config.Config, logger zerolog.Logger) error {
	id, secret := cfg.Auth.BootstrapClientID, cfg.Auth.BootstrapClientSecret
	if id == "" || secret == "" {
		return nil
	}
	_, err := RegisterClient(ctx, repo, id, "bootstrap", secret, RoleAdmin, cfg.Auth.BcryptCost)
	if errors.Is(err, ErrClientExists) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info().Str("client_id", id).Msg("bootstrap client created")
	return nil
}
