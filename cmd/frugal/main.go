package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"frugal/internal/amqp"
	"frugal/internal/cli"
	apphttp "frugal/internal/http"
	"frugal/internal/mail"
	"frugal/internal/services"
)

func main() {
	cli.LoadEnv()
	logger := cli.SetupLogger()
	cfg := cli.MustLoadConfig(logger)

	repo := cli.MustOpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it expenses stay pending until the
	// worker's periodic re-check finds them.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync queue", "error", err)
		} else {
			amqpClient = client
			defer amqpClient.Close()
		}
	} else {
		logger.Info("AMQP disabled - expenses will not sync to the ledger")
	}

	mailer := mail.NewMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.AppURL, cfg.AppName, cfg.MailDevMode)

	users := services.NewUserService(repo, mailer, cfg.JWTSecret, cfg.JWTTTL)
	habits := services.NewHabitService(repo)
	goals := services.NewGoalService(repo)
	urges := services.NewUrgeService(repo)
	expenses := services.NewExpenseService(repo, amqpClient)
	scheduler := services.NewExpiryScheduler(repo, cfg.GoalExpiryInterval)

	srv := apphttp.NewServer(":"+cfg.Port, cfg.JWTSecret, users, habits, goals, urges, expenses)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start(ctx)
		<-ctx.Done()
		scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting frugal server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
