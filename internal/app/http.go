package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adanyl0v/todo-reminders/internal/config"
	"github.com/adanyl0v/todo-reminders/internal/delivery/http/v1"
	"github.com/adanyl0v/todo-reminders/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	v1Handler := mustNewV1Handler()

	router := gin.New()
	router.Use(v1Handler.HandleAccessLog)
	router.Use(gin.Recovery())
	router.Use(v1.NewMetricsMiddleware(globalMetricsRegistry))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(globalMetricsRegistry, promhttp.HandlerOpts{})))
	v1.RegisterRoutes(router, v1Handler)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) sends SIGTERM, kill -2 sends SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func mustNewV1Handler() v1.Handler {
	cfg := config.Global()

	identities, err := services.NewStaticIdentityStore(
		cfg.Identity.Username,
		cfg.Identity.Password,
		cfg.Identity.PasswordHash,
	)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to init identity store")
		panic(err)
	}

	authService := services.NewAuthService(
		componentLogger("auth"),
		identities,
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
	)
	taskService := services.NewTaskService(componentLogger("tasks"), globalTaskRepository)

	return v1.New(
		componentLogger("http"),
		authService,
		taskService,
		globalAlertFeed,
		globalTaskRepository,
	)
}
