package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jrprasath/paperhouse-backend/internal/impact"
	"github.com/jrprasath/paperhouse-backend/internal/logger"
)

func newImpactRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store, err := impact.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ledger, err := impact.NewFileLedger(filepath.Join(dir, "history"))
	if err != nil {
		t.Fatalf("NewFileLedger: %v", err)
	}
	backups, err := impact.NewFileBackups(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("NewFileBackups: %v", err)
	}
	defaults := impact.Snapshot{ProjectsCompleted: 250, HappyClients: 500, YearsExperience: 20, OngoingProjects: 15}
	engine := impact.NewEngine(logger.NewNop(), store, ledger, backups, defaults)
	h := NewImpactHandler(logger.NewNop(), engine, ledger, backups)

	r := gin.New()
	r.GET("/api/impact", h.Get)
	r.PUT("/api/impact", h.Update)
	r.POST("/api/impact/reset", h.Reset)
	r.GET("/api/impact/history", h.History)
	r.GET("/api/impact/backups", h.Backups)
	r.POST("/api/impact/backup", h.CreateBackup)
	r.POST("/api/impact/restore/:backup", h.Restore)
	r.GET("/api/impact/stats", h.Stats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetReturnsDefaultsInitially(t *testing.T) {
	r := newImpactRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/impact", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	var snap impact.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.HappyClients != 500 || snap.ProjectsCompleted != 250 {
		t.Fatalf("unexpected defaults: %+v", snap)
	}
}

func TestUpdateAppliesPartialBody(t *testing.T) {
	r := newImpactRouter(t)
	w := doJSON(t, r, http.MethodPut, "/api/impact", `{"happyClients": 600}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Changed bool            `json:"changed"`
		Data    impact.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Changed {
		t.Fatalf("expected changed=true")
	}
	if resp.Data.HappyClients != 600 || resp.Data.ProjectsCompleted != 250 {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestUpdateRejectsPresentInvalidFields(t *testing.T) {
	r := newImpactRouter(t)
	for _, body := range []string{
		`{"happyClients": -5}`,
		`{"happyClients": "lots"}`,
		`{"projectsCompleted": true}`,
	} {
		w := doJSON(t, r, http.MethodPut, "/api/impact", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status=%d", body, w.Code)
		}
		var resp struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Message != "Validation failed" || len(resp.Errors) == 0 {
			t.Fatalf("body %s: unexpected response %s", body, w.Body.String())
		}
	}
}

func TestUpdateWithNoUsableFieldsIsNoop(t *testing.T) {
	r := newImpactRouter(t)
	w := doJSON(t, r, http.MethodPut, "/api/impact", `{"somethingElse": 7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Changed bool `json:"changed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Changed {
		t.Fatalf("expected changed=false")
	}
}

func TestResetRestoreRoundTrip(t *testing.T) {
	r := newImpactRouter(t)
	if w := doJSON(t, r, http.MethodPut, "/api/impact", `{"happyClients": 900}`); w.Code != http.StatusOK {
		t.Fatalf("update: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/impact/reset", ""); w.Code != http.StatusOK {
		t.Fatalf("reset: %d", w.Code)
	}

	// Reset backed up the outgoing value, so one backup exists.
	w := doJSON(t, r, http.MethodGet, "/api/impact/backups", "")
	if w.Code != http.StatusOK {
		t.Fatalf("backups: %d", w.Code)
	}
	var ids []string
	if err := json.Unmarshal(w.Body.Bytes(), &ids); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(ids) == 0 {
		t.Fatalf("expected a backup after reset")
	}

	w = doJSON(t, r, http.MethodPost, "/api/impact/restore/"+ids[0], "")
	if w.Code != http.StatusOK {
		t.Fatalf("restore: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Data impact.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.HappyClients != 900 {
		t.Fatalf("restore did not bring back the update: %+v", resp.Data)
	}
}

func TestRestoreUnknownBackupIs404(t *testing.T) {
	r := newImpactRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/impact/restore/backup_2099-01-01T00-00-00.000000000Z.json", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
}

func TestHistoryAndStatsReflectUpdates(t *testing.T) {
	r := newImpactRouter(t)
	for _, body := range []string{`{"happyClients": 510}`, `{"happyClients": 520}`, `{"ongoingProjects": 16}`} {
		if w := doJSON(t, r, http.MethodPut, "/api/impact", body); w.Code != http.StatusOK {
			t.Fatalf("update: %d", w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/impact/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
	var entries []impact.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("history entries: %d", len(entries))
	}

	w = doJSON(t, r, http.MethodGet, "/api/impact/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %d", w.Code)
	}
	var stats impact.Statistics
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.TotalChanges != 3 {
		t.Fatalf("total changes: %d", stats.TotalChanges)
	}
	if stats.MostChangedField != impact.FieldHappyClients {
		t.Fatalf("most changed field: %q", stats.MostChangedField)
	}
}
