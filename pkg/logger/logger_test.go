package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("production", &buf)
	log.Debug().Msg("hidden")
	log.Info().Int("scenarios", 3).Msg("forecast done")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not a single JSON line: %q", buf.String())
	}
	if line["message"] != "forecast done" || line["scenarios"] != float64(3) || line["env"] != "production" {
		t.Errorf("line = %v", line)
	}
}

func TestGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinLogger(newLogger("production", &buf)))
	r.GET("/missing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing/7", nil))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("bad log line %q", buf.String())
	}
	if line["level"] != "warn" || line["path"] != "/missing/:id" || line["status"] != float64(404) {
		t.Errorf("line = %v", line)
	}
}
