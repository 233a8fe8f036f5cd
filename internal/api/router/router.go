package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/config"
	"github.com/23050617sfy/SE-GPMS/internal/api/handler"
	"github.com/23050617sfy/SE-GPMS/internal/api/middleware"
	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/jwt"
	"github.com/23050617sfy/SE-GPMS/pkg/redis"
)

const (
	student = workflow.RoleStudent
	teacher = workflow.RoleTeacher
	admin   = workflow.RoleAdmin
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流降级为放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := registerValidators(); err != nil {
		return nil, err
	}

	// 接口变量必须保持真正的 nil
	var (
		blacklist middleware.Blacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.SecurityHeaders(cfg.Server.BaseURL))
	r.Use(middleware.CORS(cfg.Server.CORS))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB << 20))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// 认证模块（无需认证，限流）
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger))
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// 流程时间窗口（公开）
	v1.GET("/process/windows", h.Process.ListWindows)
	v1.GET("/process/calendar.ics", h.Process.Calendar)

	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.Me)

		// 课题与选题
		topics := authorized.Group("/topics")
		{
			topics.GET("", h.Topic.List)
			topics.GET("/mine", middleware.RoleAuth(teacher), h.Topic.ListMine)
			topics.GET("/selection/me", middleware.RoleAuth(student), h.Topic.MySelection)
			topics.POST("", middleware.RoleAuth(teacher), h.Topic.Create)
			topics.GET("/:id", h.Topic.Get)
			topics.PUT("/:id", middleware.RoleAuth(teacher, admin), h.Topic.Update) // 所属教师校验在 Service 层
			topics.DELETE("/:id", middleware.RoleAuth(teacher, admin), h.Topic.Delete)
			topics.GET("/:id/selections", middleware.RoleAuth(teacher, admin), h.Topic.Selections)
			topics.POST("/:id/selection", middleware.RoleAuth(student), h.Topic.Select)
			topics.DELETE("/:id/selection", middleware.RoleAuth(student), h.Topic.Deselect)
		}

		// 开题报告 / 中期检查 / 论文
		submissions := map[string]struct {
			kind   service.SubmissionKind
			submit gin.HandlerFunc
		}{
			"/proposals": {service.KindProposal, h.Submission.SubmitProposal},
			"/midterms":  {service.KindMidterm, h.Submission.SubmitMidterm},
			"/theses":    {service.KindThesis, h.Submission.SubmitThesis},
		}
		for path, s := range submissions {
			g := authorized.Group(path)
			g.POST("", middleware.RoleAuth(student), s.submit)
			g.GET("/mine", middleware.RoleAuth(student), h.Submission.ListMine(s.kind))
			g.GET("", middleware.RoleAuth(teacher, admin), h.Submission.List(s.kind))
			g.POST("/:id/reviews", middleware.RoleAuth(teacher, admin), h.Submission.Review(s.kind))
		}

		// 进度
		progress := authorized.Group("/progress")
		{
			progress.GET("/me", middleware.RoleAuth(student), h.Progress.Me)
			progress.GET("/gate", middleware.RoleAuth(student), h.Progress.Gate)
			progress.GET("/students/:id", middleware.RoleAuth(teacher, admin), h.Progress.Student)
		}

		authorized.GET("/statistics/stages", middleware.RoleAuth(admin), h.Statistics.Stages)
		authorized.GET("/export/progress", middleware.RoleAuth(teacher, admin), h.Export.ExportProgress)
		authorized.PUT("/process/windows/:stage", middleware.RoleAuth(admin), h.Process.UpdateWindow)
	}

	return r, nil
}

// registerValidators 在 gin 默认校验器上注册自定义标签
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("不支持的校验引擎 %T", binding.Validator.Engine())
	}
	return dto.RegisterValidators(v)
}
