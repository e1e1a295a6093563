package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"serving-backend/internal/core"
	"serving-backend/internal/history"
	"serving-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

const (
	defaultTitle       = "Model Server"
	defaultDescription = "Serves predictions for a configured model"
	defaultDocsURL     = "/docs"

	defaultMaxUploadBytes = 32 << 20
)

// Config collects everything needed to build an API around a model.
type Config struct {
	// Task is the task tag, one of the values accepted by ParseTaskType.
	Task string

	Model core.Model

	// Preprocess and Postprocess override the category defaults. If either
	// is set, no default processor is resolved and only the set functions
	// run.
	Preprocess  core.ProcessFunc
	Postprocess core.ProcessFunc

	// Options configures the default processors; ignored when explicit
	// functions are supplied.
	Options core.ProcessorOptions

	Title       string
	Description string
	DocsURL     string

	// History, when set, records every prediction and enables the
	// /api/predictions endpoints.
	History *history.Store

	MaxUploadBytes int64
}

// Route is one entry of the API's route table.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// API registers one prediction route per task type, plus docs and optional
// prediction-history routes, onto a caller-supplied router.
type API struct {
	server *ModelServer

	title       string
	description string
	docsURL     string

	history        *history.Store
	maxUploadBytes int64

	routes []Route
}

// NewAPI builds the route table for the configured task. Construction fails
// for unrecognized task tags.
func NewAPI(cfg Config) (*API, error) {
	var processor *core.Processor
	if cfg.Preprocess != nil || cfg.Postprocess != nil {
		processor = &core.Processor{Preprocess: cfg.Preprocess, Postprocess: cfg.Postprocess}
	}

	server, err := NewModelServer(cfg.Task, cfg.Model, processor)
	if err != nil {
		return nil, err
	}
	server.resolveProcessor(cfg.Options)

	a := &API{
		server:         server,
		title:          cfg.Title,
		description:    cfg.Description,
		docsURL:        cfg.DocsURL,
		history:        cfg.History,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if a.title == "" {
		a.title = defaultTitle
	}
	if a.description == "" {
		a.description = defaultDescription
	}
	if a.docsURL == "" {
		a.docsURL = defaultDocsURL
	}
	if a.maxUploadBytes <= 0 {
		a.maxUploadBytes = defaultMaxUploadBytes
	}

	a.routes = a.buildRoutes()
	return a, nil
}

func (a *API) Task() TaskType {
	return a.server.Task()
}

// Routes returns the API's route table. Object detection is a recognized
// task type but currently has no prediction route; only the docs, health
// and history routes appear for it.
func (a *API) Routes() []Route {
	return a.routes
}

// AddRoutes registers the route table on the given router.
func (a *API) AddRoutes(r chi.Router) {
	for _, route := range a.routes {
		r.Method(route.Method, route.Path, route.Handler)
	}
}

func (a *API) buildRoutes() []Route {
	routes := []Route{
		{Method: http.MethodGet, Path: "/health", Handler: RestHandler(func(r *http.Request) (any, error) { return nil, nil })},
		{Method: http.MethodGet, Path: a.docsURL, Handler: RestHandler(a.getDocs)},
	}

	switch a.server.Task() {
	case ImageClassification:
		routes = append(routes, Route{Method: http.MethodPost, Path: "/api/predict-image", Handler: RestHandler(a.predictImage)})
	case TextClassification:
		routes = append(routes, Route{Method: http.MethodPost, Path: "/api/predict-text", Handler: RestHandler(a.predictText)})
	case QuestionAnswering:
		routes = append(routes, Route{Method: http.MethodPost, Path: "/api/QnA", Handler: RestHandler(a.predictQnA)})
	case ObjectDetection:
		// No prediction route is wired for object detection.
	}

	if a.history != nil {
		routes = append(routes,
			Route{Method: http.MethodGet, Path: "/api/predictions", Handler: RestHandler(a.listPredictions)},
			Route{Method: http.MethodGet, Path: "/api/predictions/{prediction_id}", Handler: RestHandler(a.getPrediction)},
		)
	}

	return routes
}

// Router builds a ready-to-serve router with the standard middleware stack.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	a.AddRoutes(r)
	return r
}

// Run starts an HTTP server for the API and blocks until it stops.
func (a *API) Run(addr string) error {
	slog.Info("model server listening", "addr", addr, "task", a.server.Task())

	server := &http.Server{Addr: addr, Handler: a.Router()}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) predictImage(r *http.Request) (any, error) {
	data, err := ReadUploadedFile(r, "file", a.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	return a.predict(r.Context(), data)
}

func (a *API) predictText(r *http.Request) (any, error) {
	req, err := ParseRequest[api.TextRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Query == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "missing required field: query")
	}

	return a.predict(r.Context(), req.Query)
}

func (a *API) predictQnA(r *http.Request) (any, error) {
	req, err := ParseRequest[api.QnARequest](r)
	if err != nil {
		return nil, err
	}
	if req.Query == "" || req.Question == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "missing required fields: query, question")
	}

	return a.predict(r.Context(), core.QnAInput{Query: req.Query, Question: req.Question})
}

// predict runs preprocess, the model, and postprocess; each step is applied
// only when set. The raw request input and final output are recorded in the
// history store when one is configured.
func (a *API) predict(ctx context.Context, input any) (any, error) {
	start := time.Now()

	x := input
	var err error
	if fn := a.server.processor.Preprocess; fn != nil {
		if x, err = fn(x); err != nil {
			a.record(ctx, input, nil, history.StatusFailed, start)
			return nil, CodedErrorf(http.StatusBadRequest, "preprocessing failed: %v", err)
		}
	}

	out, err := a.server.model.Predict(ctx, x)
	if err != nil {
		a.record(ctx, input, nil, history.StatusFailed, start)
		slog.Error("model prediction failed", "task", a.server.Task(), "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "model prediction failed: %v", err)
	}

	if fn := a.server.processor.Postprocess; fn != nil {
		if out, err = fn(out); err != nil {
			a.record(ctx, input, nil, history.StatusFailed, start)
			return nil, CodedErrorf(http.StatusInternalServerError, "postprocessing failed: %v", err)
		}
	}

	a.record(ctx, input, out, history.StatusSucceeded, start)
	return out, nil
}

func (a *API) record(ctx context.Context, input, output any, status string, start time.Time) {
	if a.history == nil {
		return
	}

	pred, err := history.Record(a.server.Task().String(), status, input, output, time.Since(start))
	if err != nil {
		slog.Error("error building prediction record", "error", err)
		return
	}
	if err := a.history.Save(ctx, pred); err != nil {
		slog.Error("error saving prediction record", "error", err)
	}
}

func (a *API) getDocs(r *http.Request) (any, error) {
	docs := api.Docs{
		Title:       a.title,
		Description: a.description,
		Task:        a.server.Task().String(),
	}
	for _, route := range a.routes {
		docs.Routes = append(docs.Routes, api.Route{Method: route.Method, Path: route.Path})
	}
	return docs, nil
}

func (a *API) listPredictions(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.ListPredictionsParams](r)
	if err != nil {
		return nil, err
	}

	preds, err := a.history.List(r.Context(), params.Limit, params.Offset)
	if err != nil {
		slog.Error("error listing prediction records", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving prediction records")
	}

	records := make([]api.Prediction, len(preds))
	for i, pred := range preds {
		records[i] = toApiPrediction(pred)
	}
	return records, nil
}

func (a *API) getPrediction(r *http.Request) (any, error) {
	id, err := URLParamUUID(r, "prediction_id")
	if err != nil {
		return nil, err
	}

	pred, err := a.history.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "prediction not found")
		}
		slog.Error("error getting prediction record", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving prediction record")
	}

	return toApiPrediction(pred), nil
}

func toApiPrediction(pred history.Prediction) api.Prediction {
	return api.Prediction{
		Id:           pred.Id,
		Task:         pred.Task,
		Status:       pred.Status,
		Input:        []byte(pred.Input),
		Output:       []byte(pred.Output),
		LatencyMs:    pred.LatencyMs,
		CreationTime: pred.CreationTime,
	}
}
