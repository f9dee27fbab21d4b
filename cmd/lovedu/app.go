package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"lovedu_client/cmd/lovedu/config"
	"lovedu_client/internal/api"
	"lovedu_client/internal/auth"
	"lovedu_client/internal/credentials"
	"lovedu_client/internal/database"
	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/i18n"
	"lovedu_client/internal/models"
	"lovedu_client/internal/services"
	"lovedu_client/internal/store"
	"lovedu_client/internal/utils/broker"
	"lovedu_client/internal/utils/pdfcheck"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// app wires one instance of every client component. Commands share it.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	broker     *broker.Broker
	creds      *credentials.Store
	client     *api.Client
	auth       *auth.Controller
	lang       *i18n.Preference
	translator *i18n.Translator
	chat       *services.ChatSessionService
	courses    *services.CourseService
	admin      *services.AdminService
	plans      *services.SubscriptionService

	in  *bufio.Reader
	out io.Writer
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

func openKV(cfg config.StorageConfig, logger zerolog.Logger) (store.KV, error) {
	if cfg.Driver == "memory" {
		logger.Debug().Msg("Using in-memory state; nothing survives this process")
		return store.NewMemory(), nil
	}
	db, err := database.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("driver", cfg.Driver).Msg("State database opened")
	return store.NewGorm(db), nil
}

func newApp(cfg *config.Config, logger zerolog.Logger, in io.Reader, out io.Writer) (*app, error) {
	kv, err := openKV(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	translator, err := i18n.NewTranslator()
	if err != nil {
		return nil, err
	}

	b := broker.NewBroker()
	creds := credentials.NewStore(kv, b, logger.With().Str("component", "credentials").Logger())

	var opts []api.Option
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	client := api.NewClient(cfg.API.BaseURL, creds, logger, opts...)

	lang := i18n.NewPreference(kv, b, logger.With().Str("component", "i18n").Logger())
	current := lang.Detect()

	a := &app{
		cfg:        cfg,
		logger:     logger,
		broker:     b,
		creds:      creds,
		client:     client,
		translator: translator,
		lang:       lang,
		auth: auth.NewController(client, creds, b, logger.With().Str("component", "auth").Logger(), auth.Options{
			RestrictDomain: cfg.Auth.RestrictDomain,
			AllowedDomains: cfg.Auth.AllowedDomains,
		}),
		chat: services.NewChatSessionService(client, translator, b, logger, current, services.ChatConfig{
			ErrorBannerTTL:   cfg.Chat.ErrorBannerTTL,
			Mode:             cfg.Chat.Mode,
			DefaultAssistant: models.AssistantID(cfg.Chat.DefaultAssistant),
		}),
		courses: services.NewCourseService(client, logger),
		plans:   services.NewSubscriptionService(client, logger),
		in:      bufio.NewReader(in),
		out:     out,
	}
	a.admin = services.NewAdminService(client, pdfcheck.NewChecker(cfg.Admin.MaxUploadBytes), logger, services.AdminConfig{
		UploadTick:         cfg.Admin.UploadTick,
		UploadStep:         cfg.Admin.UploadStep,
		UploadCap:          cfg.Admin.UploadCap,
		ProgressClearDelay: cfg.Admin.ProgressClearDelay,
	}, a.showProgress)
	return a, nil
}

func (a *app) t(key string) string {
	return a.translator.T(a.lang.Current(), key)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fail prints the user-facing text of err. Technical detail stays in the log.
func (a *app) fail(err error) {
	a.logger.Debug().Err(err).Msg("Command failed")
	a.println("Error:", apperrors.FriendlyMessage(err))
}

// prompt reads one line. io.EOF is returned once input is exhausted.
func (a *app) prompt(label string) (string, error) {
	if label != "" {
		a.printf("%s: ", label)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) showProgress(p services.UploadProgress) {
	if p.Cleared {
		return
	}
	a.printf("\r%s %3d%%", a.t("common.uploading"), p.Percent)
	if p.Percent >= 100 {
		a.println()
	}
}

// requireSession restores the stored session, failing when nobody is signed in.
func (a *app) requireSession(ctx context.Context) error {
	if a.auth.Restore(ctx) != auth.StateAuthenticated {
		return apperrors.NewValidationError("Not signed in. Run `lovedu login` first.")
	}
	return nil
}

// watchAuth prints a notice when stored credentials are cleared, which happens when the backend
// rejects the token.
func (a *app) watchAuth() func() {
	events := a.creds.Subscribe()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Key == credentials.KeyToken && ev.Value == "" {
					a.println()
					a.println("Your session has ended. Run `lovedu login` to sign in again.")
				}
			}
		}
	}()
	return func() {
		close(done)
		a.creds.Unsubscribe(events)
	}
}
