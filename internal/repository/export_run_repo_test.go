package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alsaji_export_v1_202608/internal/model"
)

func setupRunTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.ExportRun{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestExportRunLatest(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewExportRunRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	runs := []*model.ExportRun{
		{RunID: "run-1", Status: model.RunStatusSuccess, StartedAt: base},
		{RunID: "run-2", Status: model.RunStatusFailed, StartedAt: base.Add(10 * time.Minute)},
		{RunID: "run-3", Status: model.RunStatusSkipped, StartedAt: base.Add(20 * time.Minute)},
	}
	for _, r := range runs {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := repo.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.RunID != "run-3" {
		t.Errorf("latest = %s", latest.RunID)
	}

	success, err := repo.LatestSuccessful(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if success.RunID != "run-1" {
		t.Errorf("latest successful = %s", success.RunID)
	}
}

func TestExportRunUpdate(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewExportRunRepository(db)
	ctx := context.Background()

	run := &model.ExportRun{RunID: "run-x", Status: model.RunStatusRunning, StartedAt: time.Now()}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	run.Status = model.RunStatusSuccess
	run.DataHash = "abc123"
	run.FinishedAt = &now
	run.ProductCount = 42
	if err := repo.Update(ctx, run); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.RunStatusSuccess || stored.DataHash != "abc123" || stored.ProductCount != 42 {
		t.Errorf("更新未生效: %+v", stored)
	}
}

func TestExportRunList(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewExportRunRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		run := &model.ExportRun{
			RunID:     "run-" + string(rune('a'+i)),
			Status:    model.RunStatusSuccess,
			StartedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("期望 3 条, got %d", len(runs))
	}
	// 按开始时间倒序
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Error("排序错误")
	}
}
