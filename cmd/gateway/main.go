// Модуль main — входная точка llm-gateway: чтение конфигурации, настройка логгера
// и запуск HTTP-сервера с корректным завершением по сигналу.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sol1corejz/llm-gateway/cmd/config"
	"github.com/sol1corejz/llm-gateway/internal/cert"
	"github.com/sol1corejz/llm-gateway/internal/handlers"
	"github.com/sol1corejz/llm-gateway/internal/logger"
	"github.com/sol1corejz/llm-gateway/internal/middlewares"
	"github.com/sol1corejz/llm-gateway/internal/requestid"
	"go.uber.org/zap"
)

// Информация о сборке, передаётся через -ldflags.
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func main() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	if err := config.ParseFlags(); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := logger.Initialize(config.FlagLogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	if err := run(sigint); err != nil {
		logger.Log.Error("Failed to run server", zap.Error(err))
		return
	}
	logger.Log.Info("Server Shutdown gracefully")
}

// run поднимает HTTP-сервер и блокируется до сигнала завершения.
// После сигнала сервер дожидается текущих запросов не дольше config.ShutdownTimeout.
func run(sigint <-chan os.Signal) error {
	srv := &http.Server{
		Addr:    config.FlagRunAddr,
		Handler: newRouter(requestid.Default, config.EnablePprof),
	}

	idleConnsClosed := make(chan error, 1)
	go func() {
		<-sigint

		ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		idleConnsClosed <- srv.Shutdown(ctx)
	}()

	logger.Log.Info("Running server",
		zap.String("address", config.FlagRunAddr),
		zap.Bool("https", config.EnableHTTPS),
	)
	if err := serve(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-idleConnsClosed; err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	return nil
}

func serve(srv *http.Server) error {
	if !config.EnableHTTPS {
		return srv.ListenAndServe()
	}

	created, err := cert.Ensure(config.TLSCertFile, config.TLSKeyFile)
	if err != nil {
		return fmt.Errorf("prepare TLS certificate: %w", err)
	}
	if created {
		logger.Log.Info("Generated new TLS certificate", zap.String("cert", config.TLSCertFile))
	}
	return srv.ListenAndServeTLS(config.TLSCertFile, config.TLSKeyFile)
}

// newRouter собирает маршруты.
//
// Маршруты:
// - "/healthz" (GET): проверка живости.
// - "/" (GET): заглушка корня.
// - "/v1/complete" (POST): заглушка генерации.
// - "/metrics" (GET): метрики Prometheus.
// - "/debug/pprof/*": профилирование, если включено.
func newRouter(ids *requestid.Provider, enablePprof bool) chi.Router {
	r := chi.NewRouter()

	// Recoverer снаружи: паника генератора идентификаторов тоже превращается в 500.
	base := func(h http.HandlerFunc) http.HandlerFunc {
		return middlewares.Recoverer(
			middlewares.RequestID(ids,
				logger.RequestLogger(
					middlewares.Metrics(h),
				),
			),
		)
	}
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return base(middlewares.GzipMiddleware(h))
	}

	r.NotFound(base(http.NotFound))
	r.MethodNotAllowed(base(methodNotAllowed))

	r.Get("/healthz", wrap(handlers.HandleHealthz))
	r.Get("/", wrap(handlers.HandleRoot))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/complete", wrap(handlers.HandleComplete))
	})

	// promhttp сжимает ответ сам, поэтому без GzipMiddleware.
	r.Get("/metrics", base(promhttp.Handler().ServeHTTP))

	if enablePprof {
		r.HandleFunc("/debug/pprof/", base(pprof.Index))
		r.HandleFunc("/debug/pprof/cmdline", base(pprof.Cmdline))
		r.HandleFunc("/debug/pprof/profile", base(pprof.Profile))
		r.HandleFunc("/debug/pprof/symbol", base(pprof.Symbol))
		r.HandleFunc("/debug/pprof/trace", base(pprof.Trace))
		r.HandleFunc("/debug/pprof/{name}", base(pprof.Index))
	}

	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
