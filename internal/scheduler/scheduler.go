package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/repository"
	"collabboard/internal/service"
	"collabboard/pkg/constants"
)

const (
	jobDeadlineReminder  = "deadline_reminder"
	jobNotificationPurge = "notification_purge"

	defaultReminderCron = "0 0 9 * * *"
	defaultCleanupCron  = "0 30 3 * * *"
	defaultWindow       = 72 * time.Hour
	defaultRetention    = 30 * 24 * time.Hour
	jobTimeout          = 5 * time.Minute
)

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	cfg           *config.SchedulerConfig
	projectRepo   repository.ProjectRepository
	notifyRepo    repository.NotificationRepository
	notifications service.NotificationService
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
	now           func() time.Time
}

// NewScheduler 创建调度器
func NewScheduler(
	cfg *config.SchedulerConfig,
	projectRepo repository.ProjectRepository,
	notifyRepo repository.NotificationRepository,
	notifications service.NotificationService,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		cfg:           cfg,
		projectRepo:   projectRepo,
		notifyRepo:    notifyRepo,
		notifications: notifications,
		cronSchedules: make(map[string]cron.EntryID),
		now:           time.Now,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// cron 表达式格式: 秒 分 时 日 月 周
	reminderCron := s.cfg.ReminderCron
	if reminderCron == "" {
		reminderCron = defaultReminderCron
		log.Warnw("未配置scheduler.reminder_cron，使用默认值", "cron", reminderCron)
	}
	if err := s.register(jobDeadlineReminder, reminderCron, func(ctx context.Context) error {
		_, err := s.RemindDeadlines(ctx)
		return err
	}); err != nil {
		return err
	}

	cleanupCron := s.cfg.CleanupCron
	if cleanupCron == "" {
		cleanupCron = defaultCleanupCron
	}
	if err := s.register(jobNotificationPurge, cleanupCron, func(ctx context.Context) error {
		_, err := s.PurgeNotifications(ctx)
		return err
	}); err != nil {
		return err
	}

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

func (s *Scheduler) register(name, expr string, job func(ctx context.Context) error) error {
	log := s.logger.Sugar()

	entryID, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		log.Infof("执行定时任务: %s", name)
		if err := job(ctx); err != nil {
			log.Errorf("定时任务 %s 执行失败: %v", name, err)
		}
	})
	if err != nil {
		log.Errorf("注册定时任务 %s: %v 失败: %v", name, expr, err)
		return err
	}

	s.cronSchedules[name] = entryID
	log.Infof("定时任务已注册: %s %s entry_id=%d", name, expr, entryID)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// RemindDeadlines 给临近截止的项目成员发提醒，同一项目每人每天最多一条，返回发送数
func (s *Scheduler) RemindDeadlines(ctx context.Context) (int, error) {
	window := s.cfg.ReminderWindow
	if window <= 0 {
		window = defaultWindow
	}

	now := s.now()
	projects, err := s.projectRepo.ListDeadlineBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	sent := 0
	for _, p := range projects {
		daysLeft := int(math.Ceil(p.Deadline.Sub(now).Hours() / 24))
		priority := constants.PriorityHigh
		if daysLeft <= 1 {
			priority = constants.PriorityUrgent
		}

		for _, uid := range p.MemberIDs() {
			exists, err := s.notifyRepo.ExistsSince(ctx, uid, constants.NotificationTypeProject, p.ID, startOfDay)
			if err != nil {
				return sent, err
			}
			if exists {
				continue
			}

			projectID := p.ID
			s.notifications.Notify(ctx, &model.Notification{
				UserID:    uid,
				Message:   reminderMessage(p.Title, daysLeft),
				Type:      constants.NotificationTypeProject,
				RelatedID: &projectID,
				Priority:  priority,
			})
			sent++
		}
	}

	s.logger.Info("截止提醒已发送", zap.Int("projects", len(projects)), zap.Int("sent", sent))
	return sent, nil
}

func reminderMessage(title string, daysLeft int) string {
	if daysLeft <= 0 {
		return fmt.Sprintf("项目「%s」今天截止", title)
	}
	return fmt.Sprintf("项目「%s」将在 %d 天后截止", title, daysLeft)
}

// PurgeNotifications 清理超过保留期的已读通知
func (s *Scheduler) PurgeNotifications(ctx context.Context) (int64, error) {
	retention := s.cfg.NotificationRetention
	if retention <= 0 {
		retention = defaultRetention
	}

	deleted, err := s.notifications.PurgeRead(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.logger.Info("已清理已读通知", zap.Int64("deleted", deleted))
	return deleted, nil
}
