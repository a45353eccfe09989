package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/gallery/internal/config"
	"github.com/five82/gallery/internal/form"
	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/logging"
	"github.com/five82/gallery/internal/prefs"
	"github.com/five82/gallery/internal/query"
	"github.com/five82/gallery/internal/state"
	"github.com/five82/gallery/internal/ui"
	"github.com/five82/gallery/internal/upload"
)

const uploadCacheSize = 64

// Options configure the gallery application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/gallery/prefs.toml
	PollEvery  int    // seconds; zero uses default
	// Console, when set, also receives log records. The TUI leaves it nil
	// because it owns the terminal.
	Console io.Writer
}

// Services is the wired object graph shared by the TUI and CLI commands.
type Services struct {
	Config    config.Config
	Prefs     prefs.Prefs
	Logger    *slog.Logger
	Client    *gallery.Client
	Store     *state.Store
	Paginator *query.Paginator
	Create    *query.Mutation[gallery.NewImage, gallery.Item]
	Submitter *form.Submitter

	logCloser io.Closer
}

// Bootstrap loads configuration and builds every collaborator. Callers must
// Close the result.
func Bootstrap(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogFile,
		Console: opts.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := gallery.NewClient(cfg.APIBind)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init gallery client: %w", err)
	}

	httpStorer, err := upload.NewHTTPStorer(cfg.UploadEndpoint, cfg.UploadKey)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init upload storer: %w", err)
	}
	storer, err := upload.NewCachingStorer(httpStorer, uploadCacheSize)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init upload cache: %w", err)
	}

	store := &state.Store{}
	pager := query.NewPaginator(store, logger.With("component", "paginator"))
	pager.Register(gallery.ImagesKey, client.FetchImages)

	create := query.NewMutation(client.CreateImage, store, gallery.ImagesKey).
		WithLogger(logger.With("component", "mutation"))

	rules := form.Rules{
		MaxImageBytes:  cfg.Limits.MaxImageBytes,
		TitleMin:       cfg.Limits.TitleMin,
		TitleMax:       cfg.Limits.TitleMax,
		DescriptionMax: cfg.Limits.DescriptionMax,
	}

	logger.Debug("services ready", "api", client.BaseURL(), "upload_endpoint", cfg.UploadEndpoint)

	return &Services{
		Config:    cfg,
		Prefs:     userPrefs,
		Logger:    logger,
		Client:    client,
		Store:     store,
		Paginator: pager,
		Create:    create,
		Submitter: form.NewSubmitter(rules, storer, create),
		logCloser: closer,
	}, nil
}

// Close releases the log file.
func (s *Services) Close() error {
	if s == nil || s.logCloser == nil {
		return nil
	}
	return s.logCloser.Close()
}

// Run boots the gallery TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	svc, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	interval := defaultRevalidateInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return RunRevalidator(gctx, svc.Paginator, interval, svc.Logger.With("component", "revalidator"))
	})
	g.Go(func() error {
		defer cancel()
		return ui.Run(ui.Options{
			Context:          gctx,
			Paginator:        svc.Paginator,
			Submitter:        svc.Submitter,
			Key:              gallery.ImagesKey,
			PollTick:         interval,
			ThemeName:        svc.Prefs.Theme,
			ShowDescriptions: svc.Prefs.ShowDescriptions,
			PrefsPath:        opts.PrefsPath,
			Logger:           svc.Logger.With("component", "ui"),
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
