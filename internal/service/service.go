package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/config"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/pkg/jwt"
	"github.com/23050617sfy/SE-GPMS/pkg/redis"
)

// Cache 进度报告缓存，*redis.Client 实现该接口
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenStore Token 黑名单，*redis.Client 实现该接口
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Topic       TopicService
	Submission  SubmissionService
	Review      ReviewService
	Progress    ProgressService
	Statistics  StatisticsService
	Export      ExportService
	StageWindow StageWindowService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时不启用缓存与 Token 黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var (
		cache  Cache
		tokens TokenStore
	)
	if rdb != nil {
		cache, tokens = rdb, rdb
	}

	windows := NewStageWindowService(repo, &cfg.Workflow, logger)

	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		Topic:       NewTopicService(repo, cache, logger),
		Submission:  NewSubmissionService(repo, windows, cache, logger),
		Review:      NewReviewService(repo, cache, logger),
		Progress:    NewProgressService(repo, cache, cfg.Workflow.ProgressTTL, logger),
		Statistics:  NewStatisticsService(repo, logger),
		Export:      NewExportService(repo, cfg.Workflow.ExportMaxRows, logger),
		StageWindow: windows,
	}
}
