package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"feastiq/internal/domain"
	"feastiq/internal/repository/gormrepo"
	"feastiq/internal/server"
	"feastiq/internal/service/auth"
	"feastiq/internal/service/mail"
	"feastiq/internal/service/outbox"
	"feastiq/internal/service/sheet"
	"feastiq/internal/service/telegram"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultAdminPassword = "admin123"

func (c *CLI) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation web service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runServe(ctx)
		},
	}
}

func (c *CLI) runServe(ctx context.Context) error {
	a, err := c.bootstrap("stdout")
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if a.cfg.AdminConfig.Password == defaultAdminPassword {
		a.logger.Warn("ADMIN_PASSWORD is the default value, set a real secret")
	}
	gin.SetMode(a.cfg.GinMode)

	notifiers, err := newNotifiers(ctx, a)
	if err != nil {
		return err
	}

	repo := gormrepo.NewReservationRepository(a.db)
	dispatcher := outbox.NewDispatcher(repo, a.logger.Named("outbox"), outbox.Config{
		Interval:  a.cfg.PollInterval,
		BatchSize: a.cfg.BatchSize,
		Retry: outbox.RetryPolicy{
			MaxAttempts:  a.cfg.MaxAttempts,
			InitialDelay: a.cfg.InitialBackoff,
			MaxDelay:     a.cfg.MaxBackoff,
		},
	}, notifiers...)

	srv, err := server.New(server.Deps{
		Reservations: repo,
		Dispatcher:   dispatcher,
		Auth:         auth.NewAuthenticator(gormrepo.NewAdminRepository(a.db), a.cfg.AdminConfig.Password, a.logger.Named("auth")),
		Sessions:     server.NewSessionStore(a.cfg.SigningKey(), a.cfg.TTL, a.cfg.SecureCookie),
		Logger:       a.logger.Named("http"),
		SyncMail:     a.cfg.MailConfig.Synchronous,
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	dispatcher.Start()
	defer dispatcher.Stop()
	a.logger.Info("outbox started", zap.Strings("channels", dispatcher.Channels()))

	return srv.Run(ctx, a.cfg.Addr, a.cfg.ShutdownTimeout)
}

// newNotifiers собирает отправителей для настроенных каналов.
func newNotifiers(ctx context.Context, a *app) ([]domain.Notifier, error) {
	var notifiers []domain.Notifier

	if a.cfg.MailConfig.Disabled {
		a.logger.Warn("MAIL_DISABLED is set, reservation confirmations are not sent")
	} else {
		notifiers = append(notifiers, mail.NewMailer(a.cfg.MailConfig))
	}

	if a.cfg.GoogleSheetConfig.Enabled() {
		sheetService, err := sheet.NewSheetService(
			ctx,
			a.cfg.GoogleSheetConfig.CredentialsBase64,
			a.cfg.GoogleSheetConfig.SheetID,
			a.cfg.GoogleSheetConfig.TabID,
			a.cfg.GoogleSheetConfig.PauseMs,
			sheet.CreateColumnMapFromOrder(a.cfg.GoogleSheetConfig.Columns),
		)
		if err != nil {
			return nil, fmt.Errorf("init sheet service: %w", err)
		}
		notifiers = append(notifiers, sheetService)
	}

	if a.cfg.TelegramConfig.Enabled() {
		tgNotifier, err := telegram.NewNotifier(a.cfg.TelegramConfig.BotToken, a.cfg.TelegramConfig.Admins)
		if err != nil {
			return nil, fmt.Errorf("init telegram notifier: %w", err)
		}
		notifiers = append(notifiers, tgNotifier)
	}

	return notifiers, nil
}
