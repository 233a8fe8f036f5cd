package service

import pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"

// 多个模块共用的业务错误
var (
	ErrPermissionDenied   = pkgerrors.New(pkgerrors.KindPermission, 40300, "无权执行该操作")
	ErrNotStudentRole     = pkgerrors.New(pkgerrors.KindPermission, 40301, "仅学生可执行该操作")
	ErrNotReviewerRole    = pkgerrors.New(pkgerrors.KindPermission, 40302, "仅教师或管理员可审阅")
	ErrInvalidStage       = pkgerrors.New(pkgerrors.KindValidation, 40001, "无效的流程阶段")
	ErrSubmissionNotFound = pkgerrors.New(pkgerrors.KindNotFound, 40402, "提交记录不存在")
	ErrStudentNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 40403, "学生不存在")
)
