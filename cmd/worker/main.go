package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/config"
	"github.com/noah-isme/backend-agency/internal/customer"
	"github.com/noah-isme/backend-agency/internal/invoice"
	"github.com/noah-isme/backend-agency/internal/obs"
	"github.com/noah-isme/backend-agency/internal/queue"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	if err := os.MkdirAll(cfg.InvoicePDFDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.InvoicePDFDir).Msg("create pdf dir")
	}

	renderer := invoice.PDFRenderer{
		AgencyName:    envOrDefault("AGENCY_NAME", "Agency Back Office"),
		AgencyAddress: envOrDefault("AGENCY_ADDRESS", ""),
		AgencyPhone:   envOrDefault("AGENCY_PHONE", ""),
	}
	handler := taskHandler{
		Invoices:  invoice.NewRepo(pool),
		Customers: customer.NewRepo(pool),
		Renderer:  renderer,
		PDFDir:    cfg.InvoicePDFDir,
		Mail:      common.NopEmailSender{},
		Log:       logger,
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Logger:      asynqLogger{logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeInvoicePDF, handler.HandleInvoicePDF)
	mux.HandleFunc(queue.TypeNotifyEmail, handler.HandleNotifyEmail)

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	srv.Shutdown()
}

type taskHandler struct {
	Invoices  *invoice.Repo
	Customers *customer.Repo
	Renderer  invoice.PDFRenderer
	PDFDir    string
	Mail      common.EmailSender
	Log       zerolog.Logger
}

// HandleInvoicePDF renders the invoice document and records its storage path.
func (h taskHandler) HandleInvoicePDF(ctx context.Context, t *asynq.Task) error {
	var p queue.InvoicePDFPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	inv, err := h.Invoices.GetByID(ctx, p.InvoiceID)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", p.InvoiceID, err)
	}
	cust, err := h.Customers.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", inv.CustomerID, err)
	}

	data, filename, err := h.Renderer.Render(inv, cust.Name, cust.Phone)
	if err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.InvoiceNo, err)
	}
	path := filepath.Join(h.PDFDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := h.Invoices.SetPDFPath(ctx, inv.ID, path); err != nil {
		return fmt.Errorf("record pdf path: %w", err)
	}

	h.Log.Info().Str("invoice_no", inv.InvoiceNo).Str("path", path).Msg("invoice pdf rendered")
	return nil
}

// HandleNotifyEmail delivers a queued notification email.
func (h taskHandler) HandleNotifyEmail(_ context.Context, t *asynq.Task) error {
	var p queue.NotifyEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := h.Mail.Send(p.To, p.Subject, p.Body); err != nil {
		return fmt.Errorf("send email to %s: %w", p.To, err)
	}
	h.Log.Info().Str("to", p.To).Str("subject", p.Subject).Msg("notification email sent")
	return nil
}

type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
