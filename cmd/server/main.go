package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sbekbolat/maglink/config"
	"github.com/sbekbolat/maglink/internal/health"
	"github.com/sbekbolat/maglink/internal/infrastructure/postgres"
	ctxlog "github.com/sbekbolat/maglink/internal/log"
	"github.com/sbekbolat/maglink/internal/mail"
	"github.com/sbekbolat/maglink/internal/maintenance"
	"github.com/sbekbolat/maglink/internal/metrics"
	"github.com/sbekbolat/maglink/internal/replay"
	"github.com/sbekbolat/maglink/internal/session"
	"github.com/sbekbolat/maglink/internal/token"
	httptransport "github.com/sbekbolat/maglink/internal/transport/http"
	"github.com/sbekbolat/maglink/internal/transport/http/handler"
	"github.com/sbekbolat/maglink/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	guard := replay.NewRedisGuard(rdb)

	accountRepo := postgres.NewAccountRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	codec := token.NewCodec([]byte(cfg.LinkSecret))
	finalizer := session.NewJWTFinalizer([]byte(cfg.SessionSecret), cfg.SessionTTL())

	dispatcher := mail.NewDispatcher(mail.DispatcherConfig{
		Primary:  newPrimaryTransport(cfg, logger),
		Fallback: mail.NewSMTPTransport(cfg.SMTPAddr),
		Template: mail.Template{Subject: cfg.MailSubject, BodyHTML: cfg.MailBodyHTML},
		Sender:   mail.SenderIdentity{Name: cfg.MailFromName, Email: cfg.MailFromEmail},
		SiteName: cfg.SiteName, SiteEmail: cfg.SiteEmail,
		Admins: accountRepo,
	}, logger)

	issueUsecase := usecase.NewIssueUsecase(usecase.IssueConfig{
		Accounts:          accountRepo,
		Audit:             auditRepo,
		Codec:             codec,
		Mail:              dispatcher,
		BaseURL:           cfg.BaseURL,
		LinkTTL:           cfg.LinkTTL(),
		NeutralValidation: cfg.NeutralValidation,
	}, logger)

	redeemUsecase := usecase.NewRedeemUsecase(usecase.RedeemConfig{
		Accounts: accountRepo,
		Audit:    auditRepo,
		Codec:    codec,
		Guard:    guard,
		Sessions: finalizer,
	}, logger)

	authHandler := handler.NewAuthHandler(issueUsecase, redeemUsecase,
		cfg.SessionTTL(), cfg.SecureCookies(), logger)

	metrics.Register()
	checker := health.NewChecker(pool, guard, logger, prometheus.DefaultRegisterer)

	pruner := maintenance.NewPruner(auditRepo, cfg.AuditRetention(), logger)
	if err := pruner.Start(); err != nil {
		stop()
		log.Fatalf("pruner: %v", err)
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, []byte(cfg.SessionSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// newPrimaryTransport returns the log transport for ENV=local, Resend
// otherwise. The SMTP fallback stays the same in every environment.
func newPrimaryTransport(cfg *config.Config, logger *slog.Logger) mail.Transport {
	if cfg.Env == "local" {
		return mail.NewLogTransport(logger)
	}
	return mail.NewResendTransport(cfg.ResendAPIKey)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
