package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
	"github.com/23050617sfy/SE-GPMS/pkg/redis"
)

// ── 内存存储：各 Mock Repository 共享，互斥锁保护以支持并发测试 ──

type mockStore struct {
	mu         sync.Mutex
	nextID     uint64
	users      map[string]*model.User
	topics     map[uint64]*model.Topic
	selections map[string]*model.TopicSelection // key: student_id
	proposals  []*model.Proposal
	midterms   []*model.MidtermCheck
	theses     []*model.Thesis
	windows    map[string]*model.StageWindow
}

func newMockStore() *mockStore {
	return &mockStore{
		users:      make(map[string]*model.User),
		topics:     make(map[uint64]*model.Topic),
		selections: make(map[string]*model.TopicSelection),
		windows:    make(map[string]*model.StageWindow),
	}
}

// newTestRepo 创建基于内存存储的 Repository 聚合
func newTestRepo() (*repository.Repository, *mockStore) {
	st := newMockStore()
	return &repository.Repository{
		User:        &mockUserRepo{st},
		Topic:       &mockTopicRepo{st},
		Proposal:    &mockProposalRepo{st},
		Midterm:     &mockMidtermRepo{st},
		Thesis:      &mockThesisRepo{st},
		StageWindow: &mockStageWindowRepo{st},
	}, st
}

func (s *mockStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *mockStore) user(id string) *model.User {
	if id == "" {
		return nil
	}
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (s *mockStore) userPtr(id *string) *model.User {
	if id == nil {
		return nil
	}
	return s.user(*id)
}

func matchStudent(u *model.User, keyword string) bool {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return true
	}
	return u != nil && (strings.Contains(u.Name, kw) || strings.Contains(u.StudentID, kw))
}

func inStudents(ids []string, id string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func page[T any](list []T, f repository.SubmissionFilter) []T {
	if f.Limit <= 0 {
		return list
	}
	if f.Offset >= len(list) {
		return []T{}
	}
	end := f.Offset + f.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[f.Offset:end]
}

func newerFirst(at time.Time, aID uint64, bt time.Time, bID uint64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aID > bID
}

// ── Mock UserRepository ──

type mockUserRepo struct{ *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.StudentID == user.StudentID || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "u-" + user.StudentID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.user(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.StudentID == studentID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct{ *mockStore }

func (m *mockTopicRepo) topicCopy(t *model.Topic) *model.Topic {
	cp := *t
	cp.Teacher = m.user(t.TeacherID)
	return &cp
}

func (m *mockTopicRepo) selectionCopy(sel *model.TopicSelection) model.TopicSelection {
	cp := *sel
	if t, ok := m.topics[sel.TopicID]; ok {
		cp.Topic = m.topicCopy(t)
	}
	cp.Student = m.user(sel.StudentID)
	return cp
}

func (m *mockTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic.TopicID = m.id()
	if topic.Version == 0 {
		topic.Version = 1
	}
	now := time.Now()
	topic.CreatedAt, topic.UpdatedAt = now, now
	cp := *topic
	m.topics[topic.TopicID] = &cp
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id uint64) (*model.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.topics[id]; ok {
		return m.topicCopy(t), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) Update(_ context.Context, topic *model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.topics[topic.TopicID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != topic.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if stored.SelectedStudents > topic.MaxStudents {
		return repository.ErrBelowOccupancy
	}
	stored.Title = topic.Title
	stored.Category = topic.Category
	stored.Difficulty = topic.Difficulty
	stored.MaxStudents = topic.MaxStudents
	stored.Description = topic.Description
	stored.Requirements = topic.Requirements
	stored.Version++
	topic.Version = stored.Version
	return nil
}

func (m *mockTopicRepo) List(_ context.Context, filter repository.TopicFilter) ([]model.Topic, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Topic
	for _, t := range m.topics {
		if filter.TeacherID != "" && t.TeacherID != filter.TeacherID {
			continue
		}
		if filter.AvailableOnly && !t.Available() {
			continue
		}
		all = append(all, *m.topicCopy(t))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TopicID > all[j].TopicID })
	total := int64(len(all))
	return page(all, repository.SubmissionFilter{Offset: filter.Offset, Limit: filter.Limit}), total, nil
}

func (m *mockTopicRepo) Select(_ context.Context, topicID uint64, studentID string) (*model.TopicSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.selections[studentID]; ok {
		return nil, repository.ErrSelectionExists
	}
	t, ok := m.topics[topicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if t.SelectedStudents >= t.MaxStudents {
		return nil, repository.ErrTopicFull
	}
	t.SelectedStudents++
	sel := &model.TopicSelection{
		SelectionID: m.id(),
		TopicID:     topicID,
		StudentID:   studentID,
		SelectedAt:  time.Now(),
	}
	m.selections[studentID] = sel
	cp := *sel
	return &cp, nil
}

func (m *mockTopicRepo) Deselect(_ context.Context, topicID uint64, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[topicID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sel, ok := m.selections[studentID]
	if !ok || sel.TopicID != topicID {
		return repository.ErrSelectionMissing
	}
	delete(m.selections, studentID)
	if t.SelectedStudents > 0 {
		t.SelectedStudents--
	}
	return nil
}

func (m *mockTopicRepo) DeleteIfEmpty(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if t.SelectedStudents > 0 {
		return repository.ErrTopicOccupied
	}
	delete(m.topics, id)
	return nil
}

func (m *mockTopicRepo) GetSelectionByStudent(_ context.Context, studentID string) (*model.TopicSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel, ok := m.selections[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.selectionCopy(sel)
	return &cp, nil
}

func (m *mockTopicRepo) collect(keep func(*model.TopicSelection) bool) []model.TopicSelection {
	var result []model.TopicSelection
	for _, sel := range m.selections {
		if keep(sel) {
			result = append(result, m.selectionCopy(sel))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SelectionID < result[j].SelectionID })
	return result
}

func (m *mockTopicRepo) ListSelections(_ context.Context, topicID uint64) ([]model.TopicSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(s *model.TopicSelection) bool { return s.TopicID == topicID }), nil
}

func (m *mockTopicRepo) ListSelectionsByTeacher(_ context.Context, teacherID string) ([]model.TopicSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(s *model.TopicSelection) bool {
		t, ok := m.topics[s.TopicID]
		return ok && t.TeacherID == teacherID
	}), nil
}

func (m *mockTopicRepo) ListAllSelections(_ context.Context) ([]model.TopicSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(*model.TopicSelection) bool { return true }), nil
}

func (m *mockTopicRepo) CountSelections(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.selections)), nil
}

func (m *mockTopicRepo) ReconcileOccupancy(_ context.Context) (repository.OccupancyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[uint64]int)
	for _, sel := range m.selections {
		counts[sel.TopicID]++
	}
	var report repository.OccupancyReport
	for id, t := range m.topics {
		want := counts[id]
		if want > t.MaxStudents {
			report.Overbooked = append(report.Overbooked, id)
			want = t.MaxStudents
		}
		if t.SelectedStudents != want {
			t.SelectedStudents = want
			report.Fixed++
		}
	}
	return report, nil
}

// ── Mock ProposalRepository ──

type mockProposalRepo struct{ *mockStore }

func (m *mockProposalRepo) copyOf(p *model.Proposal) model.Proposal {
	cp := *p
	cp.Student = m.user(p.StudentID)
	cp.Reviews = make([]model.ProposalReview, len(p.Reviews))
	copy(cp.Reviews, p.Reviews)
	for i := range cp.Reviews {
		cp.Reviews[i].Reviewer = m.userPtr(cp.Reviews[i].ReviewerID)
	}
	sort.Slice(cp.Reviews, func(i, j int) bool {
		return newerFirst(cp.Reviews[i].ReviewedAt, cp.Reviews[i].ReviewID, cp.Reviews[j].ReviewedAt, cp.Reviews[j].ReviewID)
	})
	return cp
}

func (m *mockProposalRepo) Create(_ context.Context, p *model.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ProposalID = m.id()
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now()
	}
	if p.Status == "" {
		p.Status = "submitted"
	}
	cp := *p
	m.proposals = append(m.proposals, &cp)
	return nil
}

func (m *mockProposalRepo) GetByID(_ context.Context, id uint64) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.proposals {
		if p.ProposalID == id {
			cp := m.copyOf(p)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProposalRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Proposal, error) {
	list, _, err := m.List(ctx, repository.SubmissionFilter{StudentIDs: []string{studentID}})
	return list, err
}

func (m *mockProposalRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.Proposal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Proposal
	for _, p := range m.proposals {
		if inStudents(f.StudentIDs, p.StudentID) && matchStudent(m.users[p.StudentID], f.Keyword) {
			all = append(all, m.copyOf(p))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return newerFirst(all[i].SubmittedAt, all[i].ProposalID, all[j].SubmittedAt, all[j].ProposalID)
	})
	return page(all, f), int64(len(all)), nil
}

func (m *mockProposalRepo) CreateReview(_ context.Context, r *model.ProposalReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.proposals {
		if p.ProposalID == r.ProposalID {
			r.ReviewID = m.id()
			if r.ReviewedAt.IsZero() {
				r.ReviewedAt = time.Now()
			}
			p.Reviews = append(p.Reviews, *r)
			return nil
		}
	}
	return gorm.ErrForeignKeyViolated
}

// ── Mock MidtermRepository ──

type mockMidtermRepo struct{ *mockStore }

func (m *mockMidtermRepo) copyOf(mc *model.MidtermCheck) model.MidtermCheck {
	cp := *mc
	cp.Student = m.user(mc.StudentID)
	cp.Reviews = make([]model.MidtermReview, len(mc.Reviews))
	copy(cp.Reviews, mc.Reviews)
	for i := range cp.Reviews {
		cp.Reviews[i].Reviewer = m.userPtr(cp.Reviews[i].ReviewerID)
	}
	sort.Slice(cp.Reviews, func(i, j int) bool {
		return newerFirst(cp.Reviews[i].ReviewedAt, cp.Reviews[i].ReviewID, cp.Reviews[j].ReviewedAt, cp.Reviews[j].ReviewID)
	})
	return cp
}

func (m *mockMidtermRepo) Create(_ context.Context, mc *model.MidtermCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc.MidtermID = m.id()
	if mc.SubmittedAt.IsZero() {
		mc.SubmittedAt = time.Now()
	}
	if mc.Status == "" {
		mc.Status = "submitted"
	}
	cp := *mc
	m.midterms = append(m.midterms, &cp)
	return nil
}

func (m *mockMidtermRepo) GetByID(_ context.Context, id uint64) (*model.MidtermCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mc := range m.midterms {
		if mc.MidtermID == id {
			cp := m.copyOf(mc)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMidtermRepo) ListByStudent(ctx context.Context, studentID string) ([]model.MidtermCheck, error) {
	list, _, err := m.List(ctx, repository.SubmissionFilter{StudentIDs: []string{studentID}})
	return list, err
}

func (m *mockMidtermRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.MidtermCheck, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.MidtermCheck
	for _, mc := range m.midterms {
		if inStudents(f.StudentIDs, mc.StudentID) && matchStudent(m.users[mc.StudentID], f.Keyword) {
			all = append(all, m.copyOf(mc))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return newerFirst(all[i].SubmittedAt, all[i].MidtermID, all[j].SubmittedAt, all[j].MidtermID)
	})
	return page(all, f), int64(len(all)), nil
}

func (m *mockMidtermRepo) CreateReview(_ context.Context, r *model.MidtermReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mc := range m.midterms {
		if mc.MidtermID == r.MidtermID {
			r.ReviewID = m.id()
			if r.ReviewedAt.IsZero() {
				r.ReviewedAt = time.Now()
			}
			mc.Reviews = append(mc.Reviews, *r)
			return nil
		}
	}
	return gorm.ErrForeignKeyViolated
}

// ── Mock ThesisRepository ──

type mockThesisRepo struct{ *mockStore }

func (m *mockThesisRepo) copyOf(t *model.Thesis) model.Thesis {
	cp := *t
	cp.Student = m.user(t.StudentID)
	cp.Reviews = make([]model.ThesisReview, len(t.Reviews))
	copy(cp.Reviews, t.Reviews)
	for i := range cp.Reviews {
		cp.Reviews[i].Reviewer = m.userPtr(cp.Reviews[i].ReviewerID)
	}
	sort.Slice(cp.Reviews, func(i, j int) bool {
		return newerFirst(cp.Reviews[i].ReviewedAt, cp.Reviews[i].ReviewID, cp.Reviews[j].ReviewedAt, cp.Reviews[j].ReviewID)
	})
	return cp
}

func (m *mockThesisRepo) Create(_ context.Context, t *model.Thesis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ThesisID = m.id()
	if t.SubmittedAt.IsZero() {
		t.SubmittedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = "submitted"
	}
	cp := *t
	m.theses = append(m.theses, &cp)
	return nil
}

func (m *mockThesisRepo) GetByID(_ context.Context, id uint64) (*model.Thesis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.theses {
		if t.ThesisID == id {
			cp := m.copyOf(t)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockThesisRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Thesis, error) {
	list, _, err := m.List(ctx, repository.SubmissionFilter{StudentIDs: []string{studentID}})
	return list, err
}

func (m *mockThesisRepo) List(_ context.Context, f repository.SubmissionFilter) ([]model.Thesis, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Thesis
	for _, t := range m.theses {
		if f.ThesisStage != "" && t.Stage != f.ThesisStage {
			continue
		}
		if inStudents(f.StudentIDs, t.StudentID) && matchStudent(m.users[t.StudentID], f.Keyword) {
			all = append(all, m.copyOf(t))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return newerFirst(all[i].SubmittedAt, all[i].ThesisID, all[j].SubmittedAt, all[j].ThesisID)
	})
	return page(all, f), int64(len(all)), nil
}

func (m *mockThesisRepo) CreateReview(_ context.Context, r *model.ThesisReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.theses {
		if t.ThesisID == r.ThesisID {
			r.ReviewID = m.id()
			if r.ReviewedAt.IsZero() {
				r.ReviewedAt = time.Now()
			}
			t.Reviews = append(t.Reviews, *r)
			return nil
		}
	}
	return gorm.ErrForeignKeyViolated
}

// ── Mock StageWindowRepository ──

type mockStageWindowRepo struct{ *mockStore }

func (m *mockStageWindowRepo) List(_ context.Context) ([]model.StageWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.StageWindow
	for _, w := range m.windows {
		result = append(result, *w)
	}
	return result, nil
}

func (m *mockStageWindowRepo) Get(_ context.Context, stage string) (*model.StageWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.windows[stage]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStageWindowRepo) Upsert(_ context.Context, w *model.StageWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.windows[w.Stage] = &cp
	return nil
}

// ── Mock Cache / TokenStore ──

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *mockCache) wasDeleted(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.deleted {
		if k == key {
			return true
		}
	}
	return false
}

type mockTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (s *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		s.revoked[jti] = ttl
	}
	return nil
}

func (s *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

// ── 测试数据 ──

func (s *mockStore) addUser(id, studentID, name, role string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{
		UserID:    id,
		StudentID: studentID,
		Name:      name,
		Email:     studentID + "@example.edu",
		Role:      role,
	}
	u.CreatedAt = time.Now()
	s.users[id] = u
	return u
}

func (s *mockStore) addTopic(teacherID string, capacity int) *model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &model.Topic{
		TopicID:     s.id(),
		TeacherID:   teacherID,
		Title:       "面向高校的毕业设计管理平台",
		MaxStudents: capacity,
		VersionedModel: model.VersionedModel{
			Version: 1,
		},
	}
	s.topics[t.TopicID] = t
	return t
}

func (s *mockStore) topic(id uint64) model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.topics[id]
}
