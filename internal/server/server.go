package server

import (
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/metrics"
	"FuyouSentinel/internal/model"
	"FuyouSentinel/internal/recorder"
)

const maxBodySize = 4 << 20

// AnalysisRequest is the body of every POST endpoint.
type AnalysisRequest struct {
	CurrentIncome *float64          `json:"currentIncome"`
	Shifts        []model.Shift     `json:"shifts"`
	Workplaces    []model.Workplace `json:"workplaces"`
}

// ErrorResponse is written with every non-2xx status.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Server exposes the engine over HTTP.
type Server struct {
	engine   *engine.Engine
	clock    engine.Clock
	metrics  *metrics.Collector
	recorder recorder.Recorder
	log      *logrus.Logger
	srv      *fasthttp.Server
	promh    fasthttp.RequestHandler
}

// New creates a Server. Metrics and rec may be nil.
func New(eng *engine.Engine, clock engine.Clock, mc *metrics.Collector, rec recorder.Recorder, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if clock == nil {
		clock = engine.SystemClock{}
	}
	s := &Server{engine: eng, clock: clock, metrics: mc, recorder: rec, log: log}
	if mc != nil {
		s.promh = fasthttpadaptor.NewFastHTTPHandler(mc.Handler())
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handle,
		Name:               "fuyou-sentinel",
		MaxRequestBodySize: maxBodySize,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("http server listening")
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

// Handle routes a request.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(ctx.Path())
	route := path
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, time.Since(start))
		}
	}()

	switch path {
	case "/healthz":
		if !ctx.IsGet() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case "/metrics":
		if s.promh == nil {
			writeError(ctx, fasthttp.StatusNotFound, "Metrics disabled")
			return
		}
		s.promh(ctx)
	case "/api/v1/limits":
		if !ctx.IsGet() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, s.engine.Limits())
	case "/api/v1/status":
		s.post(ctx, func(req *AnalysisRequest) interface{} {
			return s.engine.GetCurrentStatus(*req.CurrentIncome)
		})
	case "/api/v1/prediction":
		s.post(ctx, func(req *AnalysisRequest) interface{} {
			return s.engine.PredictYearEnd(*req.CurrentIncome, req.Shifts)
		})
	case "/api/v1/suggestions":
		s.post(ctx, func(req *AnalysisRequest) interface{} {
			return s.engine.GenerateOptimizationSuggestions(*req.CurrentIncome, req.Shifts, req.Workplaces)
		})
	case "/api/v1/alerts":
		s.post(ctx, func(req *AnalysisRequest) interface{} {
			alerts := s.engine.GenerateAlerts(*req.CurrentIncome, req.Shifts)
			if s.metrics != nil {
				s.metrics.ObserveAlerts(alerts)
			}
			return alerts
		})
	case "/api/v1/analysis":
		s.post(ctx, func(req *AnalysisRequest) interface{} {
			return s.engine.AnalyzeRisk(*req.CurrentIncome, req.Shifts, req.Workplaces)
		})
	case "/api/v1/report":
		s.post(ctx, s.report)
	default:
		route = "unmatched"
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (s *Server) report(req *AnalysisRequest) interface{} {
	start := time.Now()
	rep := s.engine.GenerateDetailedReport(*req.CurrentIncome, req.Shifts, req.Workplaces)
	env := &model.ReportEnvelope{
		ReportID:    uuid.NewString(),
		GeneratedAt: s.clock.Now(),
		DurationMs:  time.Since(start).Milliseconds(),
		Report:      rep,
	}
	if s.metrics != nil {
		s.metrics.ObserveReport(rep)
	}
	if err := s.recorder.RecordReport(&recorder.ReportSnapshot{
		ReportID:    env.ReportID,
		Trigger:     "API",
		GeneratedAt: env.GeneratedAt,
		Report:      rep,
	}); err != nil {
		s.log.WithError(err).WithField("report_id", env.ReportID).Error("record api report")
	}
	return env
}

func (s *Server) post(ctx *fasthttp.RequestCtx, fn func(*AnalysisRequest) interface{}) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnalysisRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := validate(&req); msg != "" {
		writeError(ctx, fasthttp.StatusBadRequest, msg)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, fn(&req))
}

func validate(req *AnalysisRequest) string {
	if req.CurrentIncome == nil {
		return "currentIncome is required"
	}
	v := *req.CurrentIncome
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "currentIncome must be a non-negative number"
	}
	for i, sh := range req.Shifts {
		if sh.Earnings < 0 || sh.Hours < 0 {
			return "shifts[" + strconv.Itoa(i) + "]: earnings and hours must be non-negative"
		}
	}
	return ""
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "encode response: "+err.Error())
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(ErrorResponse{Status: status, Message: message})
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
