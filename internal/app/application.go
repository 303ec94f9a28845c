package app

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Rorical/PocketDoc/internal/config"
	"github.com/Rorical/PocketDoc/internal/core"
	"github.com/Rorical/PocketDoc/internal/dispatcher"
	"github.com/Rorical/PocketDoc/internal/eventbus"
	"github.com/Rorical/PocketDoc/internal/llm"
	"github.com/Rorical/PocketDoc/internal/logging"
	"github.com/Rorical/PocketDoc/internal/models"
	"github.com/Rorical/PocketDoc/internal/update"
)

type Options struct {
	Home     string // empty means config.DefaultHome
	Online   bool
	LogLevel string // overrides logging.level when set
}

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	log        zerolog.Logger
	logFile    io.Closer
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	local      *llm.LocalModel
	model      *AppModel
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.Home)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, logFile, err := logging.NewFile(cfg.LogFile(), level)
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	local := NewLocal(cfg, logger)

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Warn().Err(e.Err).Str("op", e.Operation).Msg("event bus error")
	})
	disp := dispatcher.NewEventDispatcher(eb)

	chatService := core.NewChatService(core.Deps{
		Metrics:   provider,
		Generator: local,
		Remote:    NewRemote(cfg, logger),
		Logger:    logger,
		CharDelay: cfg.CharDelay(),
		Online:    opts.Online,
	}, eb)

	logger.Info().
		Str("profile", cfg.ActiveProfile).
		Bool("remote", cfg.IsValid()).
		Str("local_model", cfg.Local.Model).
		Msg("application created")

	return &Application{
		config:     cfg,
		log:        logger,
		logFile:    logFile,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		local:      local,
		model: &AppModel{
			appModel:   createInitialAppModel(),
			dispatcher: disp,
		},
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	app.local.Close()

	app.log.Info().Msg("application stopped")
	app.logFile.Close()
}

func createInitialAppModel() models.AppModel {
	input := textinput.New()
	input.Placeholder = "Ask about your phone, or type 'sysinfo'"
	input.CharLimit = core.MaxInputLength * 2
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	// Turns and flags arrive from the core.
	return models.AppModel{
		Input:    input,
		Spinner:  spin,
		Viewport: viewport.New(0, 0),
		Flags:    models.UIFlags{TextInputEnabled: true},
		Status:   update.StatusReady,
	}
}
