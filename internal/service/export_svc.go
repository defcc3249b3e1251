package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alsaji_export_v1_202608/internal/model"
)

// ==================== 依赖接口 ====================

// SnapshotFetcher 整轮快照拉取
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// MirrorStore 快照落库
type MirrorStore interface {
	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error
}

// RunRecorder 导出轮次记录
type RunRecorder interface {
	Create(ctx context.Context, run *model.ExportRun) error
	Update(ctx context.Context, run *model.ExportRun) error
	Latest(ctx context.Context) (*model.ExportRun, error)
}

// ErrExportBusy 已有导出在执行中
var ErrExportBusy = errors.New("export already in progress")

const hashFileName = "data_hash.txt"

// ==================== 导出服务 ====================

// ExportService 一轮导出的编排：拉取 → 变更检测 → 聚合 → 产物 → 落库
// 内容哈希在所有产物写成功之后才持久化，中途失败不会误判为已导出
type ExportService struct {
	fetcher    SnapshotFetcher
	mirror     MirrorStore
	runs       RunRecorder
	aggregates *AggregateService
	compat     *CompatService

	outputDir string
	running   atomic.Bool
}

// NewExportService 创建导出服务
func NewExportService(fetcher SnapshotFetcher, mirror MirrorStore, runs RunRecorder,
	aggregates *AggregateService, compat *CompatService, outputDir string) *ExportService {
	return &ExportService{
		fetcher:    fetcher,
		mirror:     mirror,
		runs:       runs,
		aggregates: aggregates,
		compat:     compat,
		outputDir:  outputDir,
	}
}

// Running 是否有导出在执行中
func (s *ExportService) Running() bool {
	return s.running.Load()
}

// LatestRun 最近一次轮次记录
func (s *ExportService) LatestRun(ctx context.Context) (*model.ExportRun, error) {
	return s.runs.Latest(ctx)
}

// Run 执行一轮导出
// force 为 true 时跳过变更检测，强制重新生成产物
func (s *ExportService) Run(ctx context.Context, force bool) (*model.ExportRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrExportBusy
	}
	defer s.running.Store(false)

	run := &model.ExportRun{
		RunID:     uuid.NewString(),
		Status:    model.RunStatusRunning,
		Forced:    force,
		StartedAt: time.Now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		log.Printf("[Export] 轮次记录创建失败: %v", err)
	}

	log.Printf("[Export] 开始导出 run=%s force=%v", run.RunID, force)

	snapshot, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return s.finish(ctx, run, model.RunStatusFailed, "", nil, err)
	}
	if len(snapshot.Products) == 0 {
		return s.finish(ctx, run, model.RunStatusFailed, "", snapshot,
			errors.New("上游未返回任何商品，中止本轮导出"))
	}

	hash := DataHash(snapshot)
	run.DataHash = hash

	if !force && hash == s.readStoredHash() {
		log.Printf("[Export] 数据无变化，跳过产物生成 run=%s", run.RunID)
		return s.finish(ctx, run, model.RunStatusSkipped, hash, snapshot, nil)
	}

	filterData := s.aggregates.BuildFilterData(snapshot)
	brands := s.aggregates.BrandSummaries(snapshot)
	searchIndex := s.aggregates.BuildSearchIndex(snapshot.Products)
	compatIndex := s.compat.BuildIndex(snapshot).Entries()

	if err := s.writeArtifacts(run, snapshot, filterData, brands, searchIndex, compatIndex); err != nil {
		return s.finish(ctx, run, model.RunStatusFailed, hash, snapshot, err)
	}

	// 落库失败降级：产物已写出，镜像留到下一轮追平
	var mirrorErr error
	if s.mirror != nil {
		if mirrorErr = s.mirror.SaveSnapshot(ctx, snapshot); mirrorErr != nil {
			log.Printf("[Export] 快照落库失败（产物不受影响）: %v", mirrorErr)
		}
	}

	// 哈希必须最后写：产物全部成功之后才算一轮提交
	if err := s.saveHash(hash); err != nil {
		return s.finish(ctx, run, model.RunStatusFailed, hash, snapshot, fmt.Errorf("保存内容哈希失败: %w", err))
	}

	run.ErrorMsg = ""
	if mirrorErr != nil {
		run.ErrorMsg = "mirror: " + mirrorErr.Error()
	}
	return s.finish(ctx, run, model.RunStatusSuccess, hash, snapshot, nil)
}

// finish 补全轮次记录并落库
func (s *ExportService) finish(ctx context.Context, run *model.ExportRun, status, hash string, snapshot *model.Snapshot, cause error) (*model.ExportRun, error) {
	now := time.Now()
	run.Status = status
	run.DataHash = hash
	run.FinishedAt = &now
	if cause != nil {
		run.ErrorMsg = cause.Error()
	}

	if snapshot != nil {
		run.ProductCount = len(snapshot.Products)
		run.CategoryCount = len(snapshot.Categories)
		run.BrandCount = len(snapshot.Brands)
		run.BranchCount = len(snapshot.Branches)
		run.VehicleBrandCount = len(snapshot.VehicleBrands)
		run.VehicleModelCount = len(snapshot.VehicleModels)
		run.CompatibilityCount = len(snapshot.Compatibility)

		stats := map[string]interface{}{
			"duration_ms": now.Sub(run.StartedAt).Milliseconds(),
		}
		if len(snapshot.Degraded) > 0 {
			stats["degraded"] = snapshot.Degraded
		}
		if raw, err := json.Marshal(stats); err == nil {
			run.Stats = datatypes.JSON(raw)
		}
	}

	if err := s.runs.Update(ctx, run); err != nil {
		log.Printf("[Export] 轮次记录更新失败: %v", err)
	}

	log.Printf("[Export] 导出结束 run=%s status=%s 商品=%d", run.RunID, run.Status, run.ProductCount)
	return run, cause
}

// ==================== 变更检测 ====================

// canonicalSnapshot 哈希输入的规范形态：各切片按 id 升序，字段顺序固定
// 降级信息不参与哈希，降级与否不改变数据本身的同一性
type canonicalSnapshot struct {
	Products      []model.Product             `json:"products"`
	Categories    []model.Category            `json:"categories"`
	Brands        []model.Brand               `json:"brands"`
	Branches      []model.Branch              `json:"branches"`
	VehicleBrands []model.VehicleBrand        `json:"vehicle_brands"`
	VehicleModels []model.VehicleModel        `json:"vehicle_models"`
	Compatibility []model.CompatibilityRecord `json:"compatibility_records"`
}

// DataHash 快照内容哈希：规范化 JSON 的 md5
func DataHash(snapshot *model.Snapshot) string {
	canon := canonicalSnapshot{
		Products:      sortedByID(snapshot.Products, func(p model.Product) int64 { return p.ID }),
		Categories:    sortedByID(snapshot.Categories, func(c model.Category) int64 { return c.ID }),
		Brands:        sortedByID(snapshot.Brands, func(b model.Brand) int64 { return b.ID }),
		Branches:      sortedByID(snapshot.Branches, func(b model.Branch) int64 { return b.ID }),
		VehicleBrands: sortedByID(snapshot.VehicleBrands, func(b model.VehicleBrand) int64 { return b.ID }),
		VehicleModels: sortedByID(snapshot.VehicleModels, func(m model.VehicleModel) int64 { return m.ID }),
		Compatibility: sortedByID(snapshot.Compatibility, func(r model.CompatibilityRecord) int64 { return r.ID }),
	}

	raw, err := json.Marshal(canon)
	if err != nil {
		// 模型全部可序列化，此处不可达；保险起见返回空串强制重导
		log.Printf("[Export] 哈希序列化失败: %v", err)
		return ""
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func sortedByID[T any](in []T, idOf func(T) int64) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return idOf(out[i]) < idOf(out[j]) })
	return out
}

// readStoredHash 读取上一轮哈希，任何失败都视为无历史状态
func (s *ExportService) readStoredHash() string {
	raw, err := os.ReadFile(filepath.Join(s.outputDir, hashFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (s *ExportService) saveHash(hash string) error {
	return os.WriteFile(filepath.Join(s.outputDir, hashFileName), []byte(hash), 0o644)
}

// ==================== 产物输出 ====================

func (s *ExportService) writeArtifacts(run *model.ExportRun, snapshot *model.Snapshot,
	filterData *FilterData, brands []model.Brand, searchIndex []SearchEntry, compatIndex []VehicleEntry) error {

	jsonDir := filepath.Join(s.outputDir, "json")
	if err := os.MkdirAll(jsonDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	files := []struct {
		name string
		data interface{}
	}{
		{"products.json", snapshot.Products},
		{"categories.json", snapshot.Categories},
		{"brands.json", brands},
		{"branches.json", snapshot.Branches},
		{"vehicle_brands.json", snapshot.VehicleBrands},
		{"vehicle_models.json", snapshot.VehicleModels},
		{"compatibility_records.json", snapshot.Compatibility},
		{"filter-data.json", filterData},
		{"search-index.json", searchIndex},
		{"vehicle_compatibility_index.json", compatIndex},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(jsonDir, f.name), f.data); err != nil {
			return err
		}
	}

	modules := []struct {
		global string
		name   string
		data   interface{}
	}{
		{"filterData", "filter-data.js", filterData},
		{"searchIndex", "search-index.js", searchIndex},
		{"vehicle_compatibility_index", "vehicle_compatibility_index.js", compatIndex},
	}
	for _, m := range modules {
		if err := writeJSModule(filepath.Join(jsonDir, m.name), m.global, m.data); err != nil {
			return err
		}
	}

	if err := s.writeStaticAPI(jsonDir, snapshot, brands, filterData, searchIndex, compatIndex); err != nil {
		return err
	}

	metadata := map[string]interface{}{
		"export_date":                 time.Now().Format(time.RFC3339),
		"run_id":                      run.RunID,
		"total_products":              len(snapshot.Products),
		"total_categories":            len(snapshot.Categories),
		"total_brands":                len(snapshot.Brands),
		"total_branches":              len(snapshot.Branches),
		"total_vehicle_brands":        len(snapshot.VehicleBrands),
		"total_vehicle_models":        len(snapshot.VehicleModels),
		"total_compatibility_records": len(snapshot.Compatibility),
		"data_hash":                   run.DataHash,
	}
	if len(snapshot.Degraded) > 0 {
		metadata["degraded"] = snapshot.Degraded
	}
	return writeJSON(filepath.Join(s.outputDir, "metadata.json"), metadata)
}

func writeJSON(path string, data interface{}) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSModule 浏览器直接加载的 JS 模块：window.<global> = <json>;
func writeJSModule(path, global string, data interface{}) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", filepath.Base(path), err)
	}
	content := fmt.Sprintf("window.%s = %s;\n", global, raw)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", filepath.Base(path), err)
	}
	return nil
}
