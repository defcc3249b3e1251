package task

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"alsaji_export_v1_202608/internal/service"
	"alsaji_export_v1_202608/pkg/utils"
)

// ==================== ExportTask 定时导出任务 ====================

// ExportTask 定时触发导出
// 调度策略：
//   - 增量导出：每 30 分钟，哈希无变化时自动跳过
//   - 强制全量：每日凌晨 3 点，忽略变更检测
type ExportTask struct {
	exportService *service.ExportService
	cron          *cron.Cron

	initialDelay time.Duration
	runTimeout   time.Duration
}

// NewExportTask 创建导出任务
func NewExportTask(exportService *service.ExportService) *ExportTask {
	return &ExportTask{
		exportService: exportService,
		cron:          cron.New(cron.WithSeconds()),
		initialDelay:  10 * time.Second,
		runTimeout:    30 * time.Minute,
	}
}

// Start 启动定时任务
func (t *ExportTask) Start() {
	// 首次执行（延迟数秒，等 HTTP 服务就绪）
	go func() {
		time.Sleep(t.initialDelay)
		log.Println("[ExportTask] 执行首次导出...")
		t.runOnce(false)
	}()

	// 增量导出：每 30 分钟
	_, _ = t.cron.AddFunc("0 */30 * * * *", func() {
		t.runOnce(false)
	})

	// 强制全量：每日凌晨 3 点
	_, _ = t.cron.AddFunc("0 0 3 * * *", func() {
		log.Println("[ExportTask] 开始每日强制全量导出...")
		t.runOnce(true)
	})

	t.cron.Start()
	log.Println("[ExportTask] 已启动 (增量每30分钟/强制全量每日3点)")
}

// Stop 停止任务
func (t *ExportTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[ExportTask] 已停止")
}

// RunNow 立即执行一轮导出
func (t *ExportTask) RunNow(force bool) {
	t.runOnce(force)
}

func (t *ExportTask) runOnce(force bool) {
	ctx, cancel := context.WithTimeout(context.Background(), t.runTimeout)
	defer cancel()

	run, err := t.exportService.Run(ctx, force)
	switch {
	case errors.Is(err, service.ErrExportBusy):
		log.Println("[ExportTask] 上一轮导出尚未结束，跳过本次调度")
		return
	case err != nil:
		log.Printf("[ExportTask] 导出失败: %v", err)
		return
	}

	// 镜像已更新，API 层的快照缓存作废
	utils.DeleteCache("catalog:snapshot")
	log.Printf("[ExportTask] 导出完成 run=%s status=%s", run.RunID, run.Status)
}
