package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/repository"
)

// runTimeout 单次任务执行上限
const runTimeout = 30 * time.Second

// OccupancyReconciler 按选题记录校准课题已选人数，repository.TopicRepository 实现该接口
type OccupancyReconciler interface {
	ReconcileOccupancy(ctx context.Context) (repository.OccupancyReport, error)
}

// Scheduler 后台定时任务
type Scheduler struct {
	cron       *cron.Cron
	reconciler OccupancyReconciler
	logger     *zap.Logger
}

// NewScheduler 创建调度器，expr 为标准 5 段 cron 表达式
// 上一次执行未结束时跳过本次触发
func NewScheduler(expr string, reconciler OccupancyReconciler, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		reconciler: reconciler,
		logger:     logger,
	}
	if _, err := s.cron.AddFunc(expr, s.reconcile); err != nil {
		return nil, err
	}
	return s, nil
}

// Start 启动调度，非阻塞
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务已启动", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop 停止调度并等待正在执行的任务结束，ctx 到期则放弃等待
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("定时任务已停止")
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// RunOnce 立即执行一次校准
func (s *Scheduler) RunOnce(ctx context.Context) (repository.OccupancyReport, error) {
	return s.reconciler.ReconcileOccupancy(ctx)
}

func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("校准选题人数失败", zap.Error(err))
		return
	}
	if len(report.Overbooked) > 0 {
		s.logger.Error("课题选题人数超过上限，需人工处理",
			zap.Uint64s("topic_ids", report.Overbooked),
		)
	}
	if report.Fixed > 0 {
		s.logger.Warn("选题人数与选题记录不一致，已校准",
			zap.Int64("topics", report.Fixed),
			zap.Duration("duration", time.Since(start)),
		)
		return
	}
	s.logger.Debug("选题人数校准完成", zap.Duration("duration", time.Since(start)))
}

// cronLogger 将 cron 内部日志写入 zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
