package handler

import (
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Topic      *TopicHandler
	Submission *SubmissionHandler
	Progress   *ProgressHandler
	Statistics *StatisticsHandler
	Export     *ExportHandler
	Process    *ProcessHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, logger),
		Topic:      NewTopicHandler(svc.Topic, logger),
		Submission: NewSubmissionHandler(svc.Submission, svc.Review, logger),
		Progress:   NewProgressHandler(svc.Progress, logger),
		Statistics: NewStatisticsHandler(svc.Statistics, logger),
		Export:     NewExportHandler(svc.Export, logger),
		Process:    NewProcessHandler(svc.StageWindow, logger),
	}
}
