package task

import (
	"log"

	"alsaji_export_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 目前只有导出任务，保留管理器以便后续挂更多任务
type TaskManager struct {
	exportTask *ExportTask
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	ExportEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		ExportEnabled: true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(exportService *service.ExportService, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}
	if cfg.ExportEnabled {
		tm.exportTask = NewExportTask(exportService)
	}
	return tm
}

// Start 启动所有任务
func (tm *TaskManager) Start() {
	if tm.exportTask != nil {
		tm.exportTask.Start()
	}
	log.Println("[TaskManager] 后台任务已启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.exportTask != nil {
		tm.exportTask.Stop()
	}
	log.Println("[TaskManager] 后台任务已停止")
}
