package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/DhavalSuthar-24/miow-forecast/config"
	"github.com/DhavalSuthar-24/miow-forecast/internal/common"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/token"
)

type fakeRepo struct {
	mu      sync.Mutex
	clients map[string]*Client
	touched int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{clients: make(map[string]*Client)} }

func (r *fakeRepo) GetClientByClientID(_ context.Context, id string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clients[id], nil
}

func (r *fakeRepo) CreateClient(_ context.Context, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uint(len(r.clients) + 1)
	r.clients[c.ClientID] = c
	return nil
}

func (r *fakeRepo) TouchClient(context.Context, uint, time.Time) error {
	r.mu.Lock()
	r.touched++
	r.mu.Unlock()
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.AccessTokenSecret = "secret"
	cfg.JWT.AccessTokenExpiryMinutes = 5
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func post(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newFakeRepo()
	cfg := testConfig()
	if _, err := RegisterClient(context.Background(), repo, "desk", "Desk", "hunter22", "", cfg.Auth.BcryptCost); err != nil {
		t.Fatal(err)
	}
	repo.clients["gone"] = &Client{ClientID: "gone", SecretHash: repo.clients["desk"].SecretHash, Active: false}

	r := gin.New()
	r.POST("/auth/token", NewAuthController(repo, cfg, zerolog.Nop()).IssueToken)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing secret", gin.H{"client_id": "desk"}, http.StatusBadRequest},
		{"unknown client", TokenRequest{ClientID: "nobody", ClientSecret: "hunter22"}, http.StatusUnauthorized},
		{"wrong secret", TokenRequest{ClientID: "desk", ClientSecret: "hunter2"}, http.StatusUnauthorized},
		{"inactive", TokenRequest{ClientID: "gone", ClientSecret: "hunter22"}, http.StatusUnauthorized},
		{"ok", TokenRequest{ClientID: "desk", ClientSecret: "hunter22"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, "/auth/token", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp TokenResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			claims, err := token.ValidateJWT(resp.AccessToken, cfg.JWT.AccessTokenSecret)
			if err != nil {
				t.Fatalf("issued token does not validate: %v", err)
			}
			if claims.ClientID != "desk" || claims.Role != RoleClient {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
	if repo.touched != 1 {
		t.Errorf("touched %d times, want 1", repo.touched)
	}
}

func TestCreateClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newFakeRepo()
	ac := NewAuthController(repo, testConfig(), zerolog.Nop())
	r := gin.New()
	r.POST("/auth/clients", func(c *gin.Context) {
		c.Set(common.ContextClientIDKey, "root")
		c.Set(common.ContextRoleKey, RoleAdmin)
	}, ac.CreateClient)

	w := post(r, "/auth/clients", CreateClientRequest{ClientID: "reports", Role: RoleAdmin})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data CreateClientResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.ClientSecret) != generatedSecretLength || resp.Data.Role != RoleAdmin {
		t.Errorf("response = %+v", resp.Data)
	}
	stored := repo.clients["reports"]
	if stored == nil || bcrypt.CompareHashAndPassword([]byte(stored.SecretHash), []byte(resp.Data.ClientSecret)) != nil {
		t.Fatal("stored hash does not match the returned secret")
	}

	if w := post(r, "/auth/clients", CreateClientRequest{ClientID: "reports"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", w.Code)
	}
	if w := post(r, "/auth/clients", CreateClientRequest{ClientID: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("short id: status = %d, want 400", w.Code)
	}
}

func TestBootstrap(t *testing.T) {
	repo := newFakeRepo()
	cfg := testConfig()
	if err := Bootstrap(context.Background(), repo, cfg, zerolog.Nop()); err != nil || len(repo.clients) != 0 {
		t.Fatalf("unconfigured bootstrap created %d clients, err %v", len(repo.clients), err)
	}

	cfg.Auth.BootstrapClientID, cfg.Auth.BootstrapClientSecret = "ops", "changeme"
	for i := 0; i < 2; i++ {
		if err := Bootstrap(context.Background(), repo, cfg, zerolog.Nop()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if c := repo.clients["ops"]; c == nil || c.Role != RoleAdmin || len(repo.clients) != 1 {
		t.Fatalf("clients = %v", repo.clients)
	}
}
