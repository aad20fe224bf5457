package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/infrastructure/metrics"
	"section3/internal/ports"
	"section3/internal/usecase/compliance"
)

type stubService struct {
	onboardInput compliance.ProcessNewContractInput
	period       domain.Period
	runErr       error
	laborInput   compliance.RecordLaborHoursInput
	formInput    compliance.SubmitComplianceFormInput
}

func (s *stubService) RegisterContract(_ context.Context, input compliance.RegisterContractInput) (compliance.RegisterContractResult, error) {
	if input.ClientID == "" {
		return compliance.RegisterContractResult{}, errs.Ef(errs.KindInvalidInput, "client_id is required")
	}
	return compliance.RegisterContractResult{Contract: ports.Contract{ID: "c-new", ClientID: input.ClientID}}, nil
}

func (s *stubService) ProcessNewContract(_ context.Context, input compliance.ProcessNewContractInput) (compliance.OnboardingResult, error) {
	s.onboardInput = input
	if input.ContractID == "missing" {
		return compliance.OnboardingResult{}, errs.Wrapf(ports.ErrContractNotFound, "contract %s", input.ContractID)
	}
	return compliance.OnboardingResult{ContractID: input.ContractID, TasksCreated: 4}, nil
}

func (s *stubService) UpdateContractLaborSummary(_ context.Context, contractID string, period domain.Period) (compliance.LaborSummaryResult, error) {
	s.period = period
	return compliance.LaborSummaryResult{Summary: ports.LaborSummary{ContractID: contractID, PeriodType: string(period)}}, nil
}

func (s *stubService) EvaluateApplicability(context.Context, compliance.ApplicabilityRequest) (domain.ApplicabilityDecision, error) {
	return domain.ApplicabilityDecision{IsApplicable: true}, nil
}

func (s *stubService) GenerateQuarterlyReportReminders(context.Context) (compliance.ReminderResult, error) {
	return compliance.ReminderResult{Quarter: "2026Q4", TasksCreated: 2}, nil
}

func (s *stubService) RunAllNotificationChecks(context.Context) (compliance.NotificationRunResult, error) {
	run := compliance.NotificationRunResult{Success: s.runErr == nil, AlertsCreated: 3}
	return run, s.runErr
}

func (s *stubService) RunScan(_ context.Context, scan string) (compliance.ScanResult, error) {
	if scan != compliance.ScanOverdueTasks {
		return compliance.ScanResult{}, errs.Ef(errs.KindInvalidInput, "unknown scan %q", scan)
	}
	return compliance.ScanResult{Scan: scan, Success: true, AlertsCreated: 1}, nil
}

func (s *stubService) UpdateTaskStatus(_ context.Context, input compliance.UpdateTaskStatusInput) (compliance.TaskStatusResult, error) {
	if input.Status != "completed" {
		return compliance.TaskStatusResult{}, errs.Ef(errs.KindInvalidInput, "invalid task status %q", input.Status)
	}
	return compliance.TaskStatusResult{TaskID: input.TaskID, Status: input.Status, Changed: true}, nil
}

func (s *stubService) AssignTask(_ context.Context, input compliance.AssignTaskInput) (compliance.TaskAssignmentResult, error) {
	if input.AssigneeID == "" {
		return compliance.TaskAssignmentResult{}, errs.Ef(errs.KindInvalidInput, "assignee id is required")
	}
	return compliance.TaskAssignmentResult{TaskID: input.TaskID, AssigneeID: input.AssigneeID, Changed: true}, nil
}

func (s *stubService) AddWorker(_ context.Context, input compliance.AddWorkerInput) (ports.Worker, error) {
	return ports.Worker{ID: "w-new", ClientID: input.ClientID, FullName: input.FullName}, nil
}

func (s *stubService) RecordLaborHours(_ context.Context, input compliance.RecordLaborHoursInput) (compliance.LaborHoursRecorded, error) {
	s.laborInput = input
	return compliance.LaborHoursRecorded{ID: "lh-1", ContractID: input.ContractID, WorkerID: input.WorkerID, HoursWorked: input.HoursWorked}, nil
}

func (s *stubService) AddProfile(_ context.Context, input compliance.AddProfileInput) (ports.Profile, error) {
	return ports.Profile{UserID: input.UserID, ClientID: input.ClientID, Role: input.Role}, nil
}

func (s *stubService) SubmitComplianceForm(_ context.Context, input compliance.SubmitComplianceFormInput) (ports.ComplianceForm, error) {
	s.formInput = input
	return ports.ComplianceForm{ID: "f-1", ContractID: input.ContractID, FormType: input.FormType}, nil
}

func (s *stubService) JobStatuses(context.Context) ([]compliance.JobRun, error) {
	return []compliance.JobRun{{Job: compliance.JobNotifications, Success: true}}, nil
}

type decodedEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorKind string          `json:"error_kind"`
}

func serve(t *testing.T, h http.Handler, method string, target string, body string) (int, decodedEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env decodedEnvelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
		}
	}
	return rec.Code, env
}

func TestOnboardMissingContractReturnsNotFoundEnvelope(t *testing.T) {
	router := NewRouter(context.Background(), &stubService{}, nil)

	status, env := serve(t, router, http.MethodPost, "/api/contracts/missing/onboard", "")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if env.Success || env.ErrorKind != string(errs.KindNotFound) || env.Error == "" {
		t.Fatalf("envelope = %#v", env)
	}
}

func TestOnboardPassesActor(t *testing.T) {
	svc := &stubService{}
	router := NewRouter(context.Background(), svc, nil)

	status, env := serve(t, router, http.MethodPost, "/api/contracts/c-1/onboard", `{"actor_id":"u-1"}`)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}
	if svc.onboardInput.ContractID != "c-1" || svc.onboardInput.ActorID == nil || *svc.onboardInput.ActorID != "u-1" {
		t.Fatalf("onboard input = %#v", svc.onboardInput)
	}
}

func TestRegisterContractValidation(t *testing.T) {
	router := NewRouter(context.Background(), &stubService{}, nil)

	status, env := serve(t, router, http.MethodPost, "/api/contracts", `{"title":"Roof"}`)
	if status != http.StatusBadRequest || env.ErrorKind != string(errs.KindInvalidInput) {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}

	status, _ = serve(t, router, http.MethodPost, "/api/contracts", `{"unknown":1}`)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", status)
	}

	status, env = serve(t, router, http.MethodPost, "/api/contracts", `{"client_id":"client-1"}`)
	if status != http.StatusCreated || !env.Success {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}
}

func TestLaborSummaryDefaultsToTotal(t *testing.T) {
	svc := &stubService{}
	router := NewRouter(context.Background(), svc, nil)

	if status, _ := serve(t, router, http.MethodPost, "/api/contracts/c-1/labor-summary", ""); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if svc.period != domain.PeriodTotal {
		t.Fatalf("period = %q, want total", svc.period)
	}

	if status, _ := serve(t, router, http.MethodPost, "/api/contracts/c-1/labor-summary?period=quarterly", ""); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if svc.period != domain.PeriodQuarterly {
		t.Fatalf("period = %q, want quarterly", svc.period)
	}
}

func TestNotificationRunKeepsPartialData(t *testing.T) {
	svc := &stubService{runErr: errs.Store(errors.New("disk full"), "create notifications")}
	router := NewRouter(context.Background(), svc, nil)

	status, env := serve(t, router, http.MethodPost, "/api/jobs/notifications", "")
	if status != http.StatusInternalServerError || env.Success {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}
	if env.ErrorKind != string(errs.KindUpstreamStore) {
		t.Fatalf("error_kind = %q", env.ErrorKind)
	}

	var run compliance.NotificationRunResult
	if err := json.Unmarshal(env.Data, &run); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if run.AlertsCreated != 3 {
		t.Fatalf("partial run = %#v", run)
	}
}

func TestNotificationScanRoute(t *testing.T) {
	router := NewRouter(context.Background(), &stubService{}, nil)

	status, env := serve(t, router, http.MethodPost, "/api/jobs/notifications/"+compliance.ScanOverdueTasks, "")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}

	status, env = serve(t, router, http.MethodPost, "/api/jobs/notifications/bogus", "")
	if status != http.StatusBadRequest || env.ErrorKind != string(errs.KindInvalidInput) {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := NewRouter(context.Background(), &stubService{}, metrics.New())

	status, env := serve(t, router, http.MethodGet, "/healthz", "")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("healthz status = %d envelope = %#v", status, env)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "section3_http_requests_total") {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}

func TestTaskStatusRoute(t *testing.T) {
	router := NewRouter(context.Background(), &stubService{}, nil)

	status, env := serve(t, router, http.MethodPost, "/api/tasks/t-1/status", `{"status":"completed"}`)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("status = %d envelope = %#v", status, env)
	}

	var result compliance.TaskStatusResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if result.TaskID != "t-1" || !result.Changed {
		t.Fatalf("result = %#v", result)
	}

	status, _ = serve(t, router, http.MethodPost, "/api/tasks/t-1/status", "")
	if status != http.StatusBadRequest {
		t.Fatalf("empty body status = %d, want 400", status)
	}
}

func TestRecordRoutes(t *testing.T) {
	svc := &stubService{}
	router := NewRouter(context.Background(), svc, nil)

	status, env := serve(t, router, http.MethodPost, "/api/tasks/t-1/assign", `{"assignee_id":"u-contractor"}`)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("assign status = %d envelope = %#v", status, env)
	}
	status, env = serve(t, router, http.MethodPost, "/api/tasks/t-1/assign", `{}`)
	if status != http.StatusBadRequest || env.ErrorKind != string(errs.KindInvalidInput) {
		t.Fatalf("assign without assignee status = %d envelope = %#v", status, env)
	}

	status, _ = serve(t, router, http.MethodPost, "/api/contracts/c-1/labor-hours",
		`{"worker_id":"w-1","work_date":"2026-10-14T00:00:00Z","hours_worked":8}`)
	if status != http.StatusCreated {
		t.Fatalf("labor-hours status = %d", status)
	}
	if svc.laborInput.ContractID != "c-1" || svc.laborInput.HoursWorked != 8 {
		t.Fatalf("labor input = %#v", svc.laborInput)
	}

	status, _ = serve(t, router, http.MethodPost, "/api/contracts/c-1/forms",
		`{"form_type":"quarterly","period_start":"2026-07-01T00:00:00Z","period_end":"2026-09-30T00:00:00Z"}`)
	if status != http.StatusCreated || svc.formInput.ContractID != "c-1" {
		t.Fatalf("forms status = %d input = %#v", status, svc.formInput)
	}

	if status, _ := serve(t, router, http.MethodPost, "/api/workers", `{"client_id":"client-1","full_name":"Ana"}`); status != http.StatusCreated {
		t.Fatalf("workers status = %d", status)
	}
	if status, _ := serve(t, router, http.MethodPost, "/api/profiles", `{"user_id":"u-1","client_id":"client-1","role":"admin"}`); status != http.StatusCreated {
		t.Fatalf("profiles status = %d", status)
	}
}
