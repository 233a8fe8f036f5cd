package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/api/middleware"
	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(binding.Validator.Engine().(*validator.Validate)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	meResult    *dto.UserResponse
	meErr       error
	registered  *dto.RegisterRequest
}

func (m *mockAuthService) Register(_ context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	m.registered = req
	return &dto.UserResponse{}, nil
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error { return nil }
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock SubmissionService / ReviewService ──

type mockSubmissionService struct {
	err       error
	stage     workflow.Stage
	payload   service.SubmissionPayload
	kind      service.SubmissionKind
	listReq   *dto.SubmissionListRequest
	called    bool
	listTotal int64
}

func (m *mockSubmissionService) Submit(_ context.Context, _ workflow.Actor, stage workflow.Stage, payload service.SubmissionPayload) (*dto.SubmissionResponse, error) {
	m.called = true
	m.stage, m.payload = stage, payload
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SubmissionResponse{ID: 1, WorkflowStage: string(stage), Title: payload.Title}, nil
}
func (m *mockSubmissionService) ListMine(_ context.Context, _ workflow.Actor, kind service.SubmissionKind) ([]dto.SubmissionResponse, error) {
	m.kind = kind
	return []dto.SubmissionResponse{}, m.err
}
func (m *mockSubmissionService) List(_ context.Context, _ workflow.Actor, kind service.SubmissionKind, req *dto.SubmissionListRequest) ([]dto.SubmissionResponse, int64, error) {
	m.kind, m.listReq = kind, req
	return []dto.SubmissionResponse{{ID: 7}}, m.listTotal, m.err
}

type mockReviewService struct {
	err      error
	kind     service.SubmissionKind
	targetID uint64
	called   bool
}

func (m *mockReviewService) Review(_ context.Context, _ workflow.Actor, kind service.SubmissionKind, targetID uint64, req *dto.ReviewRequest) (*dto.ReviewResponse, error) {
	m.called = true
	m.kind, m.targetID = kind, targetID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ReviewResponse{ID: 3, TargetID: targetID, Result: req.Result}, nil
}

// ── Mock ProgressService ──

type mockProgressService struct {
	gateStage workflow.Stage
	studentID string
}

func (m *mockProgressService) GetProgress(_ context.Context, studentID string) (*dto.ProgressResponse, error) {
	m.studentID = studentID
	if studentID == "missing" {
		return nil, service.ErrStudentNotFound
	}
	return &dto.ProgressResponse{}, nil
}
func (m *mockProgressService) CanSubmit(context.Context, string, workflow.Stage) (bool, error) {
	return true, nil
}
func (m *mockProgressService) Gate(_ context.Context, _ string, stage workflow.Stage) (*dto.GateResponse, error) {
	m.gateStage = stage
	return &dto.GateResponse{Stage: string(stage), CanSubmit: false, BlockedBy: string(workflow.StageProposal)}, nil
}
func (m *mockProgressService) LatestResult(context.Context, service.SubmissionKind, uint64) (workflow.Result, error) {
	return workflow.ResultNone, nil
}

// ── Mock ExportService / StageWindowService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportProgress(_ context.Context, _ workflow.Actor) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockStageWindowService struct {
	calendar string
}

func (m *mockStageWindowService) List(context.Context) ([]dto.StageWindowResponse, error) {
	return nil, nil
}
func (m *mockStageWindowService) Update(_ context.Context, _ workflow.Actor, stage workflow.Stage, _ *dto.UpdateStageWindowRequest) (*dto.StageWindowResponse, error) {
	if !stage.Valid() {
		return nil, service.ErrInvalidStage
	}
	return &dto.StageWindowResponse{Stage: string(stage)}, nil
}
func (m *mockStageWindowService) CheckOpen(context.Context, workflow.Stage, time.Time) error {
	return nil
}
func (m *mockStageWindowService) Calendar(context.Context) (string, error) {
	return m.calendar, nil
}

// ── Test Helpers ──

func withActor(userID string, role workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxRole, role)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func do(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ── AuthHandler ──

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, zap.NewNop())
	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := do(r, http.MethodPost, "/auth/login", jsonBody(dto.LoginRequest{Account: "2021001", Password: "wrong"}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 40101 {
		t.Errorf("expected code 40101, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())
	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := do(r, http.MethodPost, "/auth/login", strings.NewReader("not json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Register_ValidationDetails(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, zap.NewNop())
	r := gin.New()
	r.POST("/auth/register", h.Register)

	w := do(r, http.MethodPost, "/auth/register", jsonBody(map[string]string{
		"name": "  ", "student_id": "2021001", "email": "not-an-email", "password": "123",
	}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Details == "" || resp.Details == "请求格式错误" {
		t.Errorf("expected field-level details, got %q", resp.Details)
	}
	if !strings.Contains(resp.Details, "name") || !strings.Contains(resp.Details, "password") {
		t.Errorf("details should name json fields, got %q", resp.Details)
	}
	if mock.registered != nil {
		t.Error("service must not be called on validation failure")
	}
}

func TestAuthHandler_Me_RequiresActor(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())
	r := gin.New()
	r.GET("/auth/me", h.Me)

	w := do(r, http.MethodGet, "/auth/me", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ── SubmissionHandler ──

func submissionRouter(sub *mockSubmissionService, rev *mockReviewService) *gin.Engine {
	h := NewSubmissionHandler(sub, rev, zap.NewNop())
	r := gin.New()
	student := r.Group("", withActor("s-1", workflow.RoleStudent))
	student.POST("/proposals", h.SubmitProposal)
	student.POST("/theses", h.SubmitThesis)
	student.GET("/theses/mine", h.ListMine(service.KindThesis))

	teacher := r.Group("", withActor("t-1", workflow.RoleTeacher))
	teacher.GET("/midterms", h.List(service.KindMidterm))
	teacher.POST("/midterms/:id/reviews", h.Review(service.KindMidterm))
	return r
}

func TestSubmissionHandler_SubmitThesis_MapsStage(t *testing.T) {
	sub := &mockSubmissionService{}
	r := submissionRouter(sub, &mockReviewService{})

	w := do(r, http.MethodPost, "/theses", jsonBody(dto.ThesisSubmitRequest{
		Title: "终稿", FilePath: "/files/t.pdf", Version: "v2", Stage: workflow.ThesisStageSecondReview,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if sub.stage != workflow.StageThesisSecond {
		t.Errorf("expected stage %s, got %s", workflow.StageThesisSecond, sub.stage)
	}
	if sub.payload.Version != "v2" || sub.payload.FilePath != "/files/t.pdf" {
		t.Errorf("payload not forwarded: %+v", sub.payload)
	}
}

func TestSubmissionHandler_SubmitThesis_UnknownStage(t *testing.T) {
	sub := &mockSubmissionService{}
	r := submissionRouter(sub, &mockReviewService{})

	w := do(r, http.MethodPost, "/theses", jsonBody(dto.ThesisSubmitRequest{Title: "初稿", Stage: "draft"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if sub.called {
		t.Error("service must not be called")
	}
}

func TestSubmissionHandler_SubmitProposal_Gated(t *testing.T) {
	sub := &mockSubmissionService{err: service.ErrStageNotOpen}
	r := submissionRouter(sub, &mockReviewService{})

	w := do(r, http.MethodPost, "/proposals", jsonBody(dto.SubmitRequest{Title: "开题报告"}))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 40920 {
		t.Errorf("expected code 40920, got %d", resp.Code)
	}
	if sub.stage != workflow.StageProposal {
		t.Errorf("expected proposal stage, got %s", sub.stage)
	}
}

func TestSubmissionHandler_SubmitProposal_BlankTitle(t *testing.T) {
	sub := &mockSubmissionService{}
	r := submissionRouter(sub, &mockReviewService{})

	w := do(r, http.MethodPost, "/proposals", jsonBody(dto.SubmitRequest{Title: "   "}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if sub.called {
		t.Error("service must not be called")
	}
}

func TestSubmissionHandler_ListMine_Kind(t *testing.T) {
	sub := &mockSubmissionService{}
	r := submissionRouter(sub, &mockReviewService{})

	w := do(r, http.MethodGet, "/theses/mine", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if sub.kind != service.KindThesis {
		t.Errorf("expected kind thesis, got %s", sub.kind)
	}
}

func TestSubmissionHandler_List_Pagination(t *testing.T) {
	sub := &mockSubmissionService{listTotal: 41}
	r := submissionRouter(sub, &mockReviewService{})

	w := do(r, http.MethodGet, "/midterms?q=%E6%9D%8E&page=2&page_size=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if sub.listReq == nil || sub.listReq.Keyword != "李" {
		t.Fatalf("keyword not bound: %+v", sub.listReq)
	}

	var body struct {
		Data response.Page `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data.Page != 2 || body.Data.Total != 41 || body.Data.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", body.Data)
	}
}

func TestSubmissionHandler_Review(t *testing.T) {
	rev := &mockReviewService{}
	r := submissionRouter(&mockSubmissionService{}, rev)

	w := do(r, http.MethodPost, "/midterms/12/reviews", jsonBody(map[string]interface{}{"result": "revise", "score": 71}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if rev.kind != service.KindMidterm || rev.targetID != 12 {
		t.Errorf("unexpected target: %s/%d", rev.kind, rev.targetID)
	}
}

func TestSubmissionHandler_Review_BadInput(t *testing.T) {
	rev := &mockReviewService{}
	r := submissionRouter(&mockSubmissionService{}, rev)

	cases := []struct {
		name string
		path string
		body interface{}
	}{
		{"非数字 ID", "/midterms/abc/reviews", map[string]string{"result": "pass"}},
		{"未知结论", "/midterms/12/reviews", map[string]string{"result": "approve"}},
		{"分数越界", "/midterms/12/reviews", map[string]interface{}{"result": "pass", "score": 101}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tc.path, jsonBody(tc.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
	if rev.called {
		t.Error("service must not be called")
	}
}

func TestSubmissionHandler_Review_NotFound(t *testing.T) {
	r := submissionRouter(&mockSubmissionService{}, &mockReviewService{err: service.ErrSubmissionNotFound})

	w := do(r, http.MethodPost, "/midterms/99/reviews", jsonBody(map[string]string{"result": "pass"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestWriteError_Internal(t *testing.T) {
	r := submissionRouter(&mockSubmissionService{err: errors.New("connection reset")}, &mockReviewService{})

	w := do(r, http.MethodPost, "/proposals", jsonBody(dto.SubmitRequest{Title: "开题报告"}))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 50000 || strings.Contains(resp.Message, "connection reset") {
		t.Errorf("internal error leaked or wrong code: %+v", resp)
	}
}

// ── ProgressHandler ──

func TestProgressHandler(t *testing.T) {
	mock := &mockProgressService{}
	h := NewProgressHandler(mock, zap.NewNop())
	r := gin.New()
	r.GET("/progress/me", withActor("s-1", workflow.RoleStudent), h.Me)
	r.GET("/progress/gate", withActor("s-1", workflow.RoleStudent), h.Gate)
	r.GET("/progress/students/:id", withActor("t-1", workflow.RoleTeacher), h.Student)

	if w := do(r, http.MethodGet, "/progress/me", nil); w.Code != http.StatusOK || mock.studentID != "s-1" {
		t.Errorf("me: got %d for %q", w.Code, mock.studentID)
	}
	if w := do(r, http.MethodGet, "/progress/students/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/progress/gate", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing stage: expected 400, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/progress/gate?stage=defense", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown stage: expected 400, got %d", w.Code)
	}

	w := do(r, http.MethodGet, "/progress/gate?stage=midterm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gateStage != workflow.StageMidterm {
		t.Errorf("expected midterm, got %s", mock.gateStage)
	}
}

// ── ExportHandler / ProcessHandler ──

func TestExportHandler_ExportProgress(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "学生进度_20250301.xlsx"}
	h := NewExportHandler(mock, zap.NewNop())
	r := gin.New()
	r.GET("/export/progress", withActor("a-1", workflow.RoleAdmin), h.ExportProgress)

	w := do(r, http.MethodGet, "/export/progress", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename*=UTF-8''") || !strings.HasSuffix(cd, ".xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if w.Body.String() != "xlsx" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_PermissionDenied(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrPermissionDenied}, zap.NewNop())
	r := gin.New()
	r.GET("/export/progress", withActor("s-1", workflow.RoleStudent), h.ExportProgress)

	if w := do(r, http.MethodGet, "/export/progress", nil); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestProcessHandler(t *testing.T) {
	h := NewProcessHandler(&mockStageWindowService{calendar: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}, zap.NewNop())
	r := gin.New()
	r.GET("/process/calendar.ics", h.Calendar)
	r.PUT("/process/windows/:stage", withActor("a-1", workflow.RoleAdmin), h.UpdateWindow)

	w := do(r, http.MethodGet, "/process/calendar.ics", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("calendar: got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("calendar cache-control: got %q", cc)
	}

	body := map[string]string{"start_date": "2025-03-01", "end_date": "2025-03-31"}
	if w := do(r, http.MethodPut, "/process/windows/defense", jsonBody(body)); w.Code != http.StatusBadRequest {
		t.Errorf("unknown stage: expected 400, got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/process/windows/proposal", jsonBody(body)); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
