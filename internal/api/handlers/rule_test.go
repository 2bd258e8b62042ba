package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/skysweep/skysweep/internal/domain/rule"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/validator"
	"github.com/skysweep/skysweep/internal/services"
	"github.com/skysweep/skysweep/internal/testutil"
)

func newRuleTestRouter(repo *testutil.MockRuleRepository) http.Handler {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	h := NewRuleHandler(services.NewRuleService(repo, log), log, validator.New())

	r := chi.NewRouter()
	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/", h.ResetAll)
		r.Get("/{resourceType}", h.Get)
		r.Delete("/{resourceType}", h.Reset)
		r.Patch("/{resourceType}/settings", h.UpdateSetting)
		r.Put("/{resourceType}/settings", h.ReplaceSettings)
	})
	return r
}

func seededHandlerRepo() *testutil.MockRuleRepository {
	repo := testutil.NewMockRuleRepository()
	repo.Seed(rule.TypeEBSVolume, "Unattached EBS volumes", rule.Settings{
		rule.KeyEnabled:    rule.BoolValue(true),
		rule.KeyMinAgeDays: rule.IntValue(7),
	})
	return repo
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response was not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, env
}

func TestRuleHandler_List(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/rules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rules []map[string]interface{}
	if err := json.Unmarshal(env.Data, &rules); err != nil {
		t.Fatalf("Failed to parse rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}
	if rules[0]["resourceType"] != rule.TypeEBSVolume {
		t.Errorf("Unexpected resource type %v", rules[0]["resourceType"])
	}
	if rules[0]["customized"] != false {
		t.Error("Pristine rule should not be customized")
	}
	if rules[0]["thresholdKey"] != rule.KeyMinAgeDays {
		t.Errorf("Expected threshold key min_age_days, got %v", rules[0]["thresholdKey"])
	}
}

func TestRuleHandler_Get_NotFound(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/rules/quantum_widget", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "RULE_NOT_FOUND" {
		t.Errorf("Expected RULE_NOT_FOUND, got %+v", env.Error)
	}
}

func TestRuleHandler_UpdateSetting(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	rec, env := doRequest(t, router, http.MethodPatch,
		"/api/v1/rules/ebs_volume/settings",
		`{"key": "min_age_days", "value": 14}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated map[string]interface{}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("Failed to parse rule: %v", err)
	}
	if updated["customized"] != true {
		t.Error("Expected customized=true after edit")
	}

	current := updated["currentSettings"].(map[string]interface{})
	if current["min_age_days"].(float64) != 14 {
		t.Errorf("Expected min_age_days 14, got %v", current["min_age_days"])
	}
}

func TestRuleHandler_UpdateSetting_BadRequests(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"key": `, http.StatusBadRequest},
		{"missing key", `{"value": 5}`, http.StatusBadRequest},
		{"nested value", `{"key": "min_age_days", "value": {"nope": 1}}`, http.StatusBadRequest},
		{"array value", `{"key": "min_age_days", "value": [1]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, router, http.MethodPatch,
				"/api/v1/rules/ebs_volume/settings", tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRuleHandler_ValidationErrorCode(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	tests := []struct {
		name   string
		method string
		body   string
	}{
		{"patch missing key", http.MethodPatch, `{"value": 5}`},
		{"put empty settings", http.MethodPut, `{"settings": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, router, tt.method,
				"/api/v1/rules/ebs_volume/settings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("Expected VALIDATION_ERROR, got %+v", env.Error)
			}
		})
	}
}

func TestRuleHandler_ReplaceSettings(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	rec, env := doRequest(t, router, http.MethodPut,
		"/api/v1/rules/ebs_volume/settings",
		`{"settings": {"enabled": false, "min_age_days": 30}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated map[string]interface{}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("Failed to parse rule: %v", err)
	}
	current := updated["currentSettings"].(map[string]interface{})
	if current["enabled"] != false {
		t.Errorf("Expected enabled false, got %v", current["enabled"])
	}
}

func TestRuleHandler_ResetFlow(t *testing.T) {
	repo := seededHandlerRepo()
	router := newRuleTestRouter(repo)

	doRequest(t, router, http.MethodPatch,
		"/api/v1/rules/ebs_volume/settings",
		`{"key": "min_age_days", "value": 60}`)

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/rules/ebs_volume", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var reset map[string]interface{}
	if err := json.Unmarshal(env.Data, &reset); err != nil {
		t.Fatalf("Failed to parse rule: %v", err)
	}
	if reset["customized"] != false {
		t.Error("Expected customized=false after reset")
	}
	current := reset["currentSettings"].(map[string]interface{})
	if current["min_age_days"].(float64) != 7 {
		t.Errorf("Expected factory min_age_days 7, got %v", current["min_age_days"])
	}
}

func TestRuleHandler_ResetAll(t *testing.T) {
	router := newRuleTestRouter(seededHandlerRepo())

	doRequest(t, router, http.MethodPatch,
		"/api/v1/rules/ebs_volume/settings",
		`{"key": "min_age_days", "value": 60}`)

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/rules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Reset int64 `json:"reset"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Reset != 1 {
		t.Errorf("Expected 1 reset, got %d", resp.Reset)
	}
}
