package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
	"section3/internal/usecase/compliance"
)

const maxBodyBytes = 1 << 20

// Service is the compliance surface the API exposes.
type Service interface {
	RegisterContract(context.Context, compliance.RegisterContractInput) (compliance.RegisterContractResult, error)
	ProcessNewContract(context.Context, compliance.ProcessNewContractInput) (compliance.OnboardingResult, error)
	UpdateContractLaborSummary(context.Context, string, domain.Period) (compliance.LaborSummaryResult, error)
	EvaluateApplicability(context.Context, compliance.ApplicabilityRequest) (domain.ApplicabilityDecision, error)
	GenerateQuarterlyReportReminders(context.Context) (compliance.ReminderResult, error)
	RunAllNotificationChecks(context.Context) (compliance.NotificationRunResult, error)
	RunScan(context.Context, string) (compliance.ScanResult, error)
	UpdateTaskStatus(context.Context, compliance.UpdateTaskStatusInput) (compliance.TaskStatusResult, error)
	AssignTask(context.Context, compliance.AssignTaskInput) (compliance.TaskAssignmentResult, error)
	AddWorker(context.Context, compliance.AddWorkerInput) (ports.Worker, error)
	RecordLaborHours(context.Context, compliance.RecordLaborHoursInput) (compliance.LaborHoursRecorded, error)
	AddProfile(context.Context, compliance.AddProfileInput) (ports.Profile, error)
	SubmitComplianceForm(context.Context, compliance.SubmitComplianceFormInput) (ports.ComplianceForm, error)
	JobStatuses(context.Context) ([]compliance.JobRun, error)
}

// Instrumenter wraps route handlers and serves the scrape endpoint.
type Instrumenter interface {
	WrapHandler(route string, next http.Handler) http.Handler
	Handler() http.Handler
}

type handler struct {
	svc Service
}

type onboardRequest struct {
	ActorID *string `json:"actor_id"`
}

type taskStatusRequest struct {
	Status  string  `json:"status"`
	ActorID *string `json:"actor_id"`
}

type taskAssignRequest struct {
	AssigneeID string  `json:"assignee_id"`
	ActorID    *string `json:"actor_id"`
}

func NewRouter(ctx context.Context, svc Service, instr Instrumenter) http.Handler {
	logCtx := logging.WithComponent(ctx, "transport.httpapi")
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logCtx))

	route := func(pattern string, fn http.HandlerFunc) http.Handler {
		if instr == nil {
			return fn
		}
		return instr.WrapHandler(pattern, fn)
	}

	r.Method(http.MethodGet, "/healthz", route("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	if instr != nil {
		r.Method(http.MethodGet, "/metrics", instr.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/contracts", route("/api/contracts", h.registerContract))
		r.Method(http.MethodPost, "/contracts/{id}/onboard", route("/api/contracts/{id}/onboard", h.onboardContract))
		r.Method(http.MethodPost, "/contracts/{id}/labor-summary", route("/api/contracts/{id}/labor-summary", h.laborSummary))
		r.Method(http.MethodPost, "/contracts/{id}/labor-hours", route("/api/contracts/{id}/labor-hours", h.recordLaborHours))
		r.Method(http.MethodPost, "/contracts/{id}/forms", route("/api/contracts/{id}/forms", h.submitForm))
		r.Method(http.MethodPost, "/tasks/{id}/status", route("/api/tasks/{id}/status", h.taskStatus))
		r.Method(http.MethodPost, "/tasks/{id}/assign", route("/api/tasks/{id}/assign", h.assignTask))
		r.Method(http.MethodPost, "/workers", route("/api/workers", h.addWorker))
		r.Method(http.MethodPost, "/profiles", route("/api/profiles", h.addProfile))
		r.Method(http.MethodPost, "/applicability", route("/api/applicability", h.applicability))
		r.Method(http.MethodPost, "/jobs/quarterly-reminders", route("/api/jobs/quarterly-reminders", h.quarterlyReminders))
		r.Method(http.MethodPost, "/jobs/notifications", route("/api/jobs/notifications", h.notifications))
		r.Method(http.MethodPost, "/jobs/notifications/{scan}", route("/api/jobs/notifications/{scan}", h.notificationScan))
		r.Method(http.MethodGet, "/jobs/status", route("/api/jobs/status", h.jobStatus))
	})

	return r
}

func requestLogger(ctx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqCtx := logging.WithLogger(r.Context(), logging.Logger(ctx))
			reqCtx = logging.WithAttrs(reqCtx, logging.Attrs(ctx)...)
			reqCtx = logging.WithRequestID(reqCtx, middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(reqCtx))

			logging.Info(
				reqCtx,
				"http request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
			)
		})
	}
}

func (h *handler) registerContract(w http.ResponseWriter, r *http.Request) {
	var input compliance.RegisterContractInput
	if err := decodeBody(r, &input, false); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.RegisterContract(r.Context(), input)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (h *handler) onboardContract(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.ProcessNewContract(r.Context(), compliance.ProcessNewContractInput{
		ContractID: chi.URLParam(r, "id"),
		ActorID:    req.ActorID,
	})
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) laborSummary(w http.ResponseWriter, r *http.Request) {
	period := domain.Period(strings.TrimSpace(r.URL.Query().Get("period")))
	if period == "" {
		period = domain.PeriodTotal
	}

	out, err := h.svc.UpdateContractLaborSummary(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) taskStatus(w http.ResponseWriter, r *http.Request) {
	var req taskStatusRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.UpdateTaskStatus(r.Context(), compliance.UpdateTaskStatusInput{
		TaskID:  chi.URLParam(r, "id"),
		Status:  req.Status,
		ActorID: req.ActorID,
	})
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) assignTask(w http.ResponseWriter, r *http.Request) {
	var req taskAssignRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.AssignTask(r.Context(), compliance.AssignTaskInput{
		TaskID:     chi.URLParam(r, "id"),
		AssigneeID: req.AssigneeID,
		ActorID:    req.ActorID,
	})
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) recordLaborHours(w http.ResponseWriter, r *http.Request) {
	var input compliance.RecordLaborHoursInput
	if err := decodeBody(r, &input, false); err != nil {
		writeError(w, err, nil)
		return
	}
	input.ContractID = chi.URLParam(r, "id")

	out, err := h.svc.RecordLaborHours(r.Context(), input)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (h *handler) submitForm(w http.ResponseWriter, r *http.Request) {
	var input compliance.SubmitComplianceFormInput
	if err := decodeBody(r, &input, false); err != nil {
		writeError(w, err, nil)
		return
	}
	input.ContractID = chi.URLParam(r, "id")

	out, err := h.svc.SubmitComplianceForm(r.Context(), input)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (h *handler) addWorker(w http.ResponseWriter, r *http.Request) {
	var input compliance.AddWorkerInput
	if err := decodeBody(r, &input, false); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.AddWorker(r.Context(), input)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (h *handler) addProfile(w http.ResponseWriter, r *http.Request) {
	var input compliance.AddProfileInput
	if err := decodeBody(r, &input, false); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.AddProfile(r.Context(), input)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (h *handler) applicability(w http.ResponseWriter, r *http.Request) {
	var req compliance.ApplicabilityRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err, nil)
		return
	}

	out, err := h.svc.EvaluateApplicability(r.Context(), req)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) quarterlyReminders(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GenerateQuarterlyReportReminders(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) notifications(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.RunAllNotificationChecks(r.Context())
	if err != nil {
		writeError(w, err, out)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) notificationScan(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.RunScan(r.Context(), chi.URLParam(r, "scan"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *handler) jobStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.JobStatuses(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeData(w, http.StatusOK, out)
}

func decodeBody(r *http.Request, dst any, optional bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return errs.E(errs.KindInvalidInput, errs.Wrap(err, "decode request body"))
	}
	return nil
}
