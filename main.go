package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Erick01081/ComisionTecni/config"
	"github.com/Erick01081/ComisionTecni/controllers"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/routes"
	"github.com/Erick01081/ComisionTecni/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if err := config.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	users := repository.NewUserRepository(db)
	deliveryService := services.NewDeliveryService(repository.NewDeliveryRepository(db), users)

	digestLogs := repository.NewDigestLogRepository(db)
	if cfg.Digest.Enabled() {
		digest, err := newDigest(cfg, deliveryService, digestLogs, log)
		if err != nil {
			log.WithError(err).Fatal("failed to set up daily digest")
		}
		defer digest.Stop()
	}

	r := routes.SetupRouter(routes.Dependencies{
		Config: cfg,
		Log:    log,
		Users:  users,
		Auth: controllers.NewAuthController(users, controllers.AuthSettings{
			Secret:       cfg.JWTSecret,
			Expiry:       cfg.JWTExpiry,
			CookieSecure: cfg.CookieSecure,
			AdminEmails:  cfg.AdminEmails,
		}, log),
		Deliveries: controllers.NewDeliveryController(deliveryService, log),
		Reports:    controllers.NewReportController(deliveryService, log),
		Dashboard:  controllers.NewDashboardController(deliveryService, cfg.Location, log),
		Digests:    controllers.NewDigestController(digestLogs, log),
	})
	printRoutes(r, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

func newDigest(cfg config.Config, reports services.ReportSource, logs services.DigestLogStore, log *logrus.Logger) (*services.DigestService, error) {
	messenger, err := services.NewTwilioMessenger(
		cfg.Digest.TwilioAccountSID,
		cfg.Digest.TwilioAuthToken,
		cfg.Digest.FromNumber,
		cfg.Digest.WhatsAppNumber,
	)
	if err != nil {
		return nil, err
	}
	digest := services.NewDigestService(reports, messenger, cfg.Digest.Recipients, cfg.Digest.Schedule, cfg.Location, log).RecordTo(logs)
	if err := digest.StartScheduler(); err != nil {
		return nil, err
	}
	return digest, nil
}

func printRoutes(r *gin.Engine, log *logrus.Logger) {
	for _, route := range r.Routes() {
		log.WithFields(logrus.Fields{"method": route.Method, "path": route.Path}).Debug("route registered")
	}
}
