package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/songzhibin97/dropcalc/internal/data"
	"github.com/songzhibin97/dropcalc/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// AddressResolver turns an ENS name or raw address into a ResolvedAddress.
type AddressResolver interface {
	Resolve(ctx context.Context, input string) models.ResolvedAddress
}

// Config 服务配置
type Config struct {
	Title          string        // 页面标题
	RequestTimeout time.Duration // 单个请求内所有上游调用的总超时
}

// Deps are the collaborators the handlers call. Prices may be nil.
type Deps struct {
	Collector data.DataCollector
	Resolver  AddressResolver
	Prices    data.PriceSource
	Logger    *zap.Logger
	Now       func() time.Time
}

type Server struct {
	cfg       Config
	collector data.DataCollector
	resolver  AddressResolver
	prices    data.PriceSource
	logger    *zap.Logger
	now       func() time.Time
	page      *template.Template
}

// NewRouter builds the HTTP routes for the page and the JSON API.
func NewRouter(cfg Config, deps Deps) *mux.Router {
	s := newServer(cfg, deps)

	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.loggingMiddleware, s.recoverMiddleware)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/projects", s.handleProjects).Methods(http.MethodGet)
	api.HandleFunc("/pool", s.handlePool).Methods(http.MethodGet)
	api.HandleFunc("/calculate", s.handleCalculate).Methods(http.MethodPost)
	api.HandleFunc("/resolve/{input}", s.handleResolve).Methods(http.MethodGet)
	api.HandleFunc("/wallet/{input}", s.handleWallet).Methods(http.MethodGet)

	return r
}

func newServer(cfg Config, deps Deps) *Server {
	if cfg.Title == "" {
		cfg.Title = "Mocadrop Reward Calculator"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Server{
		cfg:       cfg,
		collector: deps.Collector,
		resolver:  deps.Resolver,
		prices:    deps.Prices,
		logger:    logger,
		now:       now,
		page:      template.Must(template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html")),
	}
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
}
