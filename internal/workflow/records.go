package workflow

import "time"

// Submission 某阶段的一次提交
// 选题阶段以 TopicSelection 记录充当提交
type Submission struct {
	ID          uint64
	Stage       Stage
	Title       string
	SubmittedAt time.Time
}

// Review 一条审阅记录，TargetID 指向同阶段的 Submission.ID
type Review struct {
	ID           uint64
	Stage        Stage
	TargetID     uint64
	ReviewerID   string
	ReviewerName string
	Score        *int
	Feedback     string
	Result       Result
	ReviewedAt   time.Time
}

// newer 按 (时间, 自增ID) 比较，时间相同时插入顺序靠后者更新
func newer(at time.Time, aID uint64, bt time.Time, bID uint64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aID > bID
}

// LatestSubmission 返回指定阶段最新的一次提交
func LatestSubmission(subs []Submission, stage Stage) (Submission, bool) {
	var (
		latest Submission
		found  bool
	)
	for _, s := range subs {
		if s.Stage != stage {
			continue
		}
		if !found || newer(s.SubmittedAt, s.ID, latest.SubmittedAt, latest.ID) {
			latest, found = s, true
		}
	}
	return latest, found
}

// LatestReview 返回针对 (stage, targetID) 的最新审阅
// 多名审阅人或重复审阅时只取最新一条，不做多数表决
func LatestReview(reviews []Review, stage Stage, targetID uint64) (Review, bool) {
	var (
		latest Review
		found  bool
	)
	for _, r := range reviews {
		if r.Stage != stage || r.TargetID != targetID {
			continue
		}
		if !found || newer(r.ReviewedAt, r.ID, latest.ReviewedAt, latest.ID) {
			latest, found = r, true
		}
	}
	return latest, found
}

// LatestResult 返回目标提交的最新审阅结论，无审阅时返回 ResultNone
func LatestResult(reviews []Review, stage Stage, targetID uint64) Result {
	if r, ok := LatestReview(reviews, stage, targetID); ok {
		return r.Result
	}
	return ResultNone
}

// RecordSet 单个学生的全部提交与审阅记录
type RecordSet struct {
	Submissions []Submission
	Reviews     []Review
}

// Current 返回某阶段当前生效的提交及其最新审阅
func (rs RecordSet) Current(stage Stage) (*Submission, *Review) {
	sub, ok := LatestSubmission(rs.Submissions, stage)
	if !ok {
		return nil, nil
	}
	rev, ok := LatestReview(rs.Reviews, stage, sub.ID)
	if !ok {
		return &sub, nil
	}
	return &sub, &rev
}

// StageStatus 由当前提交与最新审阅推导阶段状态
func (rs RecordSet) StageStatus(stage Stage) Status {
	sub, rev := rs.Current(stage)
	return statusOf(sub, rev)
}

func statusOf(sub *Submission, rev *Review) Status {
	switch {
	case rev != nil:
		switch rev.Result {
		case ResultPass:
			return StatusPass
		case ResultFail:
			return StatusFail
		case ResultRevise:
			return StatusRevise
		}
		return StatusSubmitted
	case sub != nil:
		return StatusSubmitted
	default:
		return StatusNotStarted
	}
}
