package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/stock-manager/internal/config"
	"github.com/tuanvumaihuynh/stock-manager/internal/http/apierr"
	"github.com/tuanvumaihuynh/stock-manager/internal/http/metric"
	"github.com/tuanvumaihuynh/stock-manager/internal/http/middleware"
	"github.com/tuanvumaihuynh/stock-manager/internal/http/swagger"
	"github.com/tuanvumaihuynh/stock-manager/internal/service"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics

	health      HealthChecker
	productSvc  service.ProductService
	historySvc  service.HistoryService
	categorySvc service.CategoryService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	health HealthChecker,
	productSvc service.ProductService,
	historySvc service.HistoryService,
	categorySvc service.CategoryService,
) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		registry:    registry,
		metrics:     metric.New(registry),
		health:      health,
		productSvc:  productSvc,
		historySvc:  historySvc,
		categorySvc: categorySvc,
	}
}

// Registry returns the registry serving /metrics, for collectors owned by
// other services of the process.
func (s *Service) Registry() prometheus.Registerer {
	return s.registry
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r, err := s.Router(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, r)
}

// Router builds the handler tree without starting a server.
func (s *Service) Router(ctx context.Context) (chi.Router, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if _, err := swagger.Load(ctx); err != nil {
			return nil, fmt.Errorf("swagger load: %w", err)
		}
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.productSvc)
	history := newHistoryHandler(s.historySvc)
	categories := newCategoryHandler(s.categorySvc)
	health := &healthHandler{db: s.health}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handle(products.ListProducts))
		r.Post("/", s.handle(products.CreateProduct))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handle(products.GetProduct))
			r.Put("/", s.handle(products.UpdateProduct))
			r.Delete("/", s.handle(products.DeleteProduct))
			r.Post("/withdraw", s.handle(products.WithdrawStock))
			r.Post("/restock", s.handle(products.RestockProduct))
		})
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.handle(history.ListHistory))
		r.Post("/", s.handle(history.RecordEntry))
		r.Post("/deletions", s.handle(history.LogDeletion))
		r.Get("/export", s.handle(history.ExportHistory))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handle(categories.ListCategories))
		r.Post("/", s.handle(categories.CreateCategory))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handle(categories.GetCategory))
			r.Put("/", s.handle(categories.UpdateCategory))
			r.Delete("/", s.handle(categories.DeleteCategory))
		})
	})

	r.Get("/healthz", s.handle(health.Healthz))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handler returning an error to http.HandlerFunc.
func (s *Service) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	writeJSON(w, res.StatusCode, res)
}
