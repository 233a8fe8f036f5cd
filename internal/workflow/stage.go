// Package workflow 实现毕业设计流程的阶段门控与进度汇总。
//
// 该包只依赖调用方传入的记录集合，不访问数据库，便于在 Service 层
// 与测试中直接复用同一套规则。
package workflow

import "fmt"

// Stage 流程阶段
type Stage string

const (
	StageTopicSelection Stage = "topic_selection"
	StageProposal       Stage = "proposal"
	StageMidterm        Stage = "midterm"
	StageThesisFirst    Stage = "thesis_first"
	StageThesisSecond   Stage = "thesis_second"
	StageThesisFinal    Stage = "thesis_final"
)

// Stages 固定的阶段顺序
var Stages = []Stage{
	StageTopicSelection,
	StageProposal,
	StageMidterm,
	StageThesisFirst,
	StageThesisSecond,
	StageThesisFinal,
}

var stageIndex = func() map[Stage]int {
	m := make(map[Stage]int, len(Stages))
	for i, s := range Stages {
		m[s] = i
	}
	return m
}()

var stageLabels = map[Stage]string{
	StageTopicSelection: "选题",
	StageProposal:       "开题报告",
	StageMidterm:        "中期检查",
	StageThesisFirst:    "论文一审",
	StageThesisSecond:   "论文二审",
	StageThesisFinal:    "论文终稿",
}

// ParseStage 解析阶段名
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if _, ok := stageIndex[st]; !ok {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return st, nil
}

// Valid 是否为已定义阶段
func (s Stage) Valid() bool {
	_, ok := stageIndex[s]
	return ok
}

// Index 阶段在固定顺序中的位置，未知阶段返回 -1
func (s Stage) Index() int {
	if i, ok := stageIndex[s]; ok {
		return i
	}
	return -1
}

// Label 阶段中文名称
func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// Reviewed 该阶段是否需要教师审阅；选题阶段只记录选择，不审阅
func (s Stage) Reviewed() bool {
	return s.Valid() && s != StageTopicSelection
}

// Before 返回 s 之前的全部阶段
func (s Stage) Before() []Stage {
	i := s.Index()
	if i <= 0 {
		return nil
	}
	return Stages[:i]
}

// ── 论文阶段 ──

// 论文记录上的 stage 取值
const (
	ThesisStageFirstReview     = "first_review"
	ThesisStageSecondReview    = "second_review"
	ThesisStageFinalSubmission = "final_submission"
)

var thesisStageToStage = map[string]Stage{
	ThesisStageFirstReview:     StageThesisFirst,
	ThesisStageSecondReview:    StageThesisSecond,
	ThesisStageFinalSubmission: StageThesisFinal,
}

// StageFromThesisStage 将论文 stage 字段映射为流程阶段
func StageFromThesisStage(thesisStage string) (Stage, bool) {
	s, ok := thesisStageToStage[thesisStage]
	return s, ok
}

// ThesisStage 返回流程阶段对应的论文 stage 字段；非论文阶段返回 false
func (s Stage) ThesisStage() (string, bool) {
	for k, v := range thesisStageToStage {
		if v == s {
			return k, true
		}
	}
	return "", false
}

// IsThesis 是否为论文阶段
func (s Stage) IsThesis() bool {
	_, ok := s.ThesisStage()
	return ok
}

// ── 审阅结论与阶段状态 ──

// Result 审阅结论
type Result string

const (
	ResultPass   Result = "pass"
	ResultFail   Result = "fail"
	ResultRevise Result = "revise"
	// ResultNone 尚无审阅
	ResultNone Result = ""
)

// Valid 是否为合法的审阅结论（不含 ResultNone）
func (r Result) Valid() bool {
	switch r {
	case ResultPass, ResultFail, ResultRevise:
		return true
	}
	return false
}

// Status 阶段状态
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusSubmitted  Status = "submitted"
	StatusPass       Status = "pass"
	StatusFail       Status = "fail"
	StatusRevise     Status = "revise"
)

// ── 角色 ──

// Role 已在边界校验过的用户角色
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanReview 教师与管理员可审阅
func (r Role) CanReview() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Actor 发起操作的用户身份
type Actor struct {
	UserID string
	Role   Role
}
