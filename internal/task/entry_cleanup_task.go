package task

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"sourcing_dev_v1_202608/internal/repository"
)

// EntryCleanupTask 内存条目清理任务
// 条目本就不持久化，超过存活窗口的直接丢弃，防止长跑进程内存无限增长
type EntryCleanupTask struct {
	Store repository.EntryStore
	Cron  *cron.Cron

	retention time.Duration
}

func NewEntryCleanupTask(store repository.EntryStore) *EntryCleanupTask {
	return &EntryCleanupTask{
		Store:     store,
		Cron:      cron.New(),
		retention: 24 * time.Hour, // 保留一个工作日，够运营回看当天结果
	}
}

// Start 启动定时任务
func (t *EntryCleanupTask) Start() {
	_, err := t.Cron.AddFunc("@hourly", func() {
		removed := t.Store.PruneOlderThan(t.retention)
		if removed > 0 {
			log.Printf("[Task] 已清理 %d 个过期提取条目", removed)
		}
	})
	if err != nil {
		log.Fatalf("无法启动条目清理任务: %v", err)
	}

	t.Cron.Start()
	log.Println("条目清理任务已启动 (每小时一次)")
}

// Stop 停止定时任务
func (t *EntryCleanupTask) Stop() {
	t.Cron.Stop()
}
