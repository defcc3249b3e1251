package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/internal/service"
)

// ==================== 测试替身 ====================

type stubFetcher struct{}

func (stubFetcher) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return nil, errors.New("not used in this test")
}

type stubRecorder struct {
	latest *model.ExportRun
}

func (r *stubRecorder) Create(ctx context.Context, run *model.ExportRun) error { return nil }
func (r *stubRecorder) Update(ctx context.Context, run *model.ExportRun) error { return nil }
func (r *stubRecorder) Latest(ctx context.Context) (*model.ExportRun, error) {
	if r.latest == nil {
		return nil, errors.New("no runs")
	}
	return r.latest, nil
}

func setupExportRouter(recorder *stubRecorder, outputDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	exportSvc := service.NewExportService(stubFetcher{}, nil, recorder,
		service.NewAggregateService(), service.NewCompatService(), outputDir)
	ctl := NewExportController(exportSvc)

	r := gin.New()
	r.POST("/api/export/run", ctl.TriggerExport)
	r.GET("/api/export/status", ctl.GetStatus)
	return r
}

// ==================== 用例 ====================

func TestGetStatusWithHistory(t *testing.T) {
	now := time.Now()
	recorder := &stubRecorder{latest: &model.ExportRun{
		RunID:      "run-1",
		Status:     model.RunStatusSuccess,
		DataHash:   "abc",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: &now,
	}}
	r := setupExportRouter(recorder, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/status", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d", w.Code)
	}

	var resp struct {
		Running   bool `json:"running"`
		LatestRun *struct {
			RunID  string `json:"run_id"`
			Status string `json:"status"`
		} `json:"latest_run"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Running {
		t.Error("无导出时 running 应为 false")
	}
	if resp.LatestRun == nil || resp.LatestRun.RunID != "run-1" {
		t.Errorf("latest_run 错误: %+v", resp.LatestRun)
	}
}

func TestTriggerExportAccepted(t *testing.T) {
	r := setupExportRouter(&stubRecorder{}, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/export/run", nil)
	r.ServeHTTP(w, req)

	// 异步触发，接口立即返回 202
	if w.Code != http.StatusAccepted {
		t.Fatalf("status code = %d, body = %s", w.Code, w.Body.String())
	}
}
