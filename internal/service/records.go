package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
)

// SubmissionKind 提交物类型，对应三张提交表
type SubmissionKind string

const (
	KindProposal SubmissionKind = "proposal"
	KindMidterm  SubmissionKind = "midterm"
	KindThesis   SubmissionKind = "thesis"
)

// KindForStage 返回阶段对应的提交物类型；选题阶段没有提交物
func KindForStage(stage workflow.Stage) (SubmissionKind, bool) {
	switch {
	case stage == workflow.StageProposal:
		return KindProposal, true
	case stage == workflow.StageMidterm:
		return KindMidterm, true
	case stage.IsThesis():
		return KindThesis, true
	}
	return "", false
}

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func userBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.UserID, StudentID: u.StudentID, DisplayName: u.DisplayName()}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ── model → workflow 记录 ──

func selectionRecord(sel *model.TopicSelection) workflow.Submission {
	title := ""
	if sel.Topic != nil {
		title = sel.Topic.Title
	}
	return workflow.Submission{
		ID:          sel.SelectionID,
		Stage:       workflow.StageTopicSelection,
		Title:       title,
		SubmittedAt: sel.SelectedAt,
	}
}

func proposalRecords(p *model.Proposal) (workflow.Submission, []workflow.Review) {
	sub := workflow.Submission{ID: p.ProposalID, Stage: workflow.StageProposal, Title: p.Title, SubmittedAt: p.SubmittedAt}
	reviews := make([]workflow.Review, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, workflow.Review{
			ID:           r.ReviewID,
			Stage:        workflow.StageProposal,
			TargetID:     r.ProposalID,
			ReviewerID:   deref(r.ReviewerID),
			ReviewerName: r.Reviewer.DisplayName(),
			Score:        r.Score,
			Feedback:     r.Feedback,
			Result:       workflow.Result(r.Result),
			ReviewedAt:   r.ReviewedAt,
		})
	}
	return sub, reviews
}

func midtermRecords(m *model.MidtermCheck) (workflow.Submission, []workflow.Review) {
	sub := workflow.Submission{ID: m.MidtermID, Stage: workflow.StageMidterm, Title: m.Title, SubmittedAt: m.SubmittedAt}
	reviews := make([]workflow.Review, 0, len(m.Reviews))
	for _, r := range m.Reviews {
		reviews = append(reviews, workflow.Review{
			ID:           r.ReviewID,
			Stage:        workflow.StageMidterm,
			TargetID:     r.MidtermID,
			ReviewerID:   deref(r.ReviewerID),
			ReviewerName: r.Reviewer.DisplayName(),
			Score:        r.Score,
			Feedback:     r.Feedback,
			Result:       workflow.Result(r.Result),
			ReviewedAt:   r.ReviewedAt,
		})
	}
	return sub, reviews
}

// thesisRecords 论文阶段取自记录的 stage 字段；无法识别的阶段不参与门控
func thesisRecords(t *model.Thesis) (workflow.Submission, []workflow.Review, bool) {
	stage, ok := workflow.StageFromThesisStage(t.Stage)
	if !ok {
		return workflow.Submission{}, nil, false
	}
	sub := workflow.Submission{ID: t.ThesisID, Stage: stage, Title: t.Title, SubmittedAt: t.SubmittedAt}
	reviews := make([]workflow.Review, 0, len(t.Reviews))
	for _, r := range t.Reviews {
		rs, ok := workflow.StageFromThesisStage(r.Stage)
		if !ok {
			continue
		}
		reviews = append(reviews, workflow.Review{
			ID:           r.ReviewID,
			Stage:        rs,
			TargetID:     r.ThesisID,
			ReviewerID:   deref(r.ReviewerID),
			ReviewerName: r.Reviewer.DisplayName(),
			Score:        r.Score,
			Feedback:     r.Feedback,
			Result:       workflow.Result(r.Result),
			ReviewedAt:   r.ReviewedAt,
		})
	}
	return sub, reviews, true
}

// recordBuilder 按学生聚合记录
type recordBuilder map[string]*workflow.RecordSet

func (b recordBuilder) get(studentID string) *workflow.RecordSet {
	rs, ok := b[studentID]
	if !ok {
		rs = &workflow.RecordSet{}
		b[studentID] = rs
	}
	return rs
}

func (b recordBuilder) addSelection(sel *model.TopicSelection) {
	rs := b.get(sel.StudentID)
	rs.Submissions = append(rs.Submissions, selectionRecord(sel))
}

func (b recordBuilder) addProposals(list []model.Proposal) {
	for i := range list {
		sub, reviews := proposalRecords(&list[i])
		rs := b.get(list[i].StudentID)
		rs.Submissions = append(rs.Submissions, sub)
		rs.Reviews = append(rs.Reviews, reviews...)
	}
}

func (b recordBuilder) addMidterms(list []model.MidtermCheck) {
	for i := range list {
		sub, reviews := midtermRecords(&list[i])
		rs := b.get(list[i].StudentID)
		rs.Submissions = append(rs.Submissions, sub)
		rs.Reviews = append(rs.Reviews, reviews...)
	}
}

func (b recordBuilder) addTheses(list []model.Thesis) {
	for i := range list {
		sub, reviews, ok := thesisRecords(&list[i])
		if !ok {
			continue
		}
		rs := b.get(list[i].StudentID)
		rs.Submissions = append(rs.Submissions, sub)
		rs.Reviews = append(rs.Reviews, reviews...)
	}
}

// loadRecordSet 读取单个学生的全部提交与审阅
func loadRecordSet(ctx context.Context, repo *repository.Repository, studentID string) (workflow.RecordSet, error) {
	b := recordBuilder{}

	sel, err := repo.Topic.GetSelectionByStudent(ctx, studentID)
	switch {
	case err == nil:
		b.addSelection(sel)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return workflow.RecordSet{}, err
	}

	proposals, err := repo.Proposal.ListByStudent(ctx, studentID)
	if err != nil {
		return workflow.RecordSet{}, err
	}
	b.addProposals(proposals)

	midterms, err := repo.Midterm.ListByStudent(ctx, studentID)
	if err != nil {
		return workflow.RecordSet{}, err
	}
	b.addMidterms(midterms)

	theses, err := repo.Thesis.ListByStudent(ctx, studentID)
	if err != nil {
		return workflow.RecordSet{}, err
	}
	b.addTheses(theses)

	return *b.get(studentID), nil
}

// recordBatchSize 单次 student_id IN 查询的学生数上限，远低于 PostgreSQL 绑定参数上限
var recordBatchSize = 1000

func (b recordBuilder) loadBatch(ctx context.Context, repo *repository.Repository, studentIDs []string) error {
	filter := repository.SubmissionFilter{StudentIDs: studentIDs}
	proposals, _, err := repo.Proposal.List(ctx, filter)
	if err != nil {
		return err
	}
	b.addProposals(proposals)

	midterms, _, err := repo.Midterm.List(ctx, filter)
	if err != nil {
		return err
	}
	b.addMidterms(midterms)

	theses, _, err := repo.Thesis.List(ctx, filter)
	if err != nil {
		return err
	}
	b.addTheses(theses)
	return nil
}

// loadRecordSets 分批读取 studentIDs 的记录，按学生分组
// 结果中每个 studentID 都有条目（可能为空记录集）
func loadRecordSets(ctx context.Context, repo *repository.Repository, studentIDs []string) (map[string]workflow.RecordSet, error) {
	out := make(map[string]workflow.RecordSet, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}
	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}

	b := recordBuilder{}
	selections, err := repo.Topic.ListAllSelections(ctx)
	if err != nil {
		return nil, err
	}
	for i := range selections {
		if wanted[selections[i].StudentID] {
			b.addSelection(&selections[i])
		}
	}

	for start := 0; start < len(studentIDs); start += recordBatchSize {
		end := start + recordBatchSize
		if end > len(studentIDs) {
			end = len(studentIDs)
		}
		if err := b.loadBatch(ctx, repo, studentIDs[start:end]); err != nil {
			return nil, err
		}
	}

	for _, id := range studentIDs {
		out[id] = *b.get(id)
	}
	return out, nil
}

// ── model → dto ──

func reviewDTO(r *workflow.Review) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		ID:           r.ID,
		TargetID:     r.TargetID,
		ReviewerID:   r.ReviewerID,
		ReviewerName: r.ReviewerName,
		Score:        r.Score,
		Feedback:     r.Feedback,
		Result:       string(r.Result),
		ReviewedAt:   formatTime(r.ReviewedAt),
	}
	if ts, ok := r.Stage.ThesisStage(); ok {
		resp.Stage = ts
	}
	return resp
}

func submissionDTO(kind SubmissionKind, sub workflow.Submission, reviews []workflow.Review, student *model.User, filePath, status string) dto.SubmissionResponse {
	resp := dto.SubmissionResponse{
		ID:            sub.ID,
		Kind:          string(kind),
		WorkflowStage: string(sub.Stage),
		Student:       userBrief(student),
		Title:         sub.Title,
		FilePath:      filePath,
		Status:        status,
		Reviews:       make([]dto.ReviewResponse, 0, len(reviews)),
		SubmittedAt:   formatTime(sub.SubmittedAt),
	}
	// 仓储层已按最新在前排序
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, reviewDTO(&reviews[i]))
	}
	resp.LatestResult = string(workflow.LatestResult(reviews, sub.Stage, sub.ID))
	return resp
}

func proposalDTO(p *model.Proposal) dto.SubmissionResponse {
	sub, reviews := proposalRecords(p)
	return submissionDTO(KindProposal, sub, reviews, p.Student, p.FilePath, p.Status)
}

func midtermDTO(m *model.MidtermCheck) dto.SubmissionResponse {
	sub, reviews := midtermRecords(m)
	return submissionDTO(KindMidterm, sub, reviews, m.Student, m.FilePath, m.Status)
}

func thesisDTO(t *model.Thesis) dto.SubmissionResponse {
	sub, reviews, _ := thesisRecords(t)
	if sub.ID == 0 {
		sub = workflow.Submission{ID: t.ThesisID, Title: t.Title, SubmittedAt: t.SubmittedAt}
	}
	resp := submissionDTO(KindThesis, sub, reviews, t.Student, t.FilePath, t.Status)
	resp.Version = t.Version
	resp.Stage = t.Stage
	return resp
}
