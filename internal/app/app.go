// Package app wires configuration, the keyboard hook, the conversion engine
// and the tray together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/TanaroSch/layout-switcher/internal/autoconvert"
	"github.com/TanaroSch/layout-switcher/internal/clipboard"
	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/hook"
	"github.com/TanaroSch/layout-switcher/internal/hotkey"
	"github.com/TanaroSch/layout-switcher/internal/inject"
	"github.com/TanaroSch/layout-switcher/internal/journal"
	"github.com/TanaroSch/layout-switcher/internal/resources"
	"github.com/TanaroSch/layout-switcher/internal/ui"
)

// AppName is shown in the tray, notifications and dialogs.
const AppName = "Layout Switcher"

// Application represents the running tray application.
type Application struct {
	version string

	mu     sync.Mutex
	config *config.Config

	errors   *ui.ErrorQueue
	notifier *ui.NotificationManager
	history  *ui.History
	tray     *ui.SystrayManager

	journal    *journal.Journal
	queue      *hook.TaskQueue
	dispatcher *hook.Dispatcher
	engine     *autoconvert.Engine
	selection  *clipboard.Service
	controller *Controller

	hook    *hook.Hook
	hotkeys *hotkey.Manager
	watcher *config.Watcher
	cancel  context.CancelFunc
}

// New builds the application for cfg.
func New(cfg *config.Config, version string) *Application {
	a := &Application{
		version: version,
		config:  cfg,
		errors:  ui.NewErrorQueue(),
		history: ui.NewHistory(ui.DefaultHistorySize),
		journal: journal.New(cfg.JournalCapacity),
		queue:   hook.NewTaskQueue(hook.DefaultQueueSize),
	}

	icon, err := resources.GetIcon()
	if err != nil {
		slog.Warn("[app] failed to load embedded icon", "error", err)
	}
	a.notifier = ui.NewNotificationManager(cfg.UseNotifications, AppName, icon)

	sys := inject.New()
	a.dispatcher = hook.NewDispatcher(cfg, hook.Options{
		Journal:  a.journal,
		Keyboard: hook.NewSystemKeyboard(),
		Queue:    a.queue,
		Errors:   a.errors,
		MapScan:  hook.ScanToVK,
	})
	a.engine = autoconvert.NewEngine(a.journal, sys, sys, autoconvert.NewLinguaModel(), cfg.DelayMs)
	a.selection = clipboard.NewService(clipboard.SystemStore(), sys, sys, a.journal, cfg.DelayMs)

	a.controller = &Controller{
		Dispatcher:           a.dispatcher,
		Engine:               a.engine,
		Selection:            a.selection,
		Layouts:              sys,
		Errors:               a.errors,
		OnAutoconvertChanged: a.onAutoconvertToggled,
		OnConverted:          a.onConverted,
	}
	a.selection.OnConverted(a.controller.SelectionConverted)

	a.tray = ui.NewSystrayManager(AppName, version, icon, cfg.AutoconvertEnabled, ui.TrayCallbacks{
		OnPause:        a.onPauseMenu,
		OnAutoconvert:  a.onAutoconvertMenu,
		OnShowHistory:  a.onShowHistory,
		OnReloadConfig: a.onReloadConfig,
		OnOpenConfig:   a.onOpenConfigFile,
		OnQuit:         a.onQuit,
	})

	a.watcher = config.NewWatcher(cfg.Path(), a.onConfigChanged, a.onConfigError)
	return a
}

// Run installs input handling, starts the background loops and blocks in
// the tray until Quit or ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	defer a.shutdown()

	a.startInput()

	if err := a.watcher.Start(ctx); err != nil {
		a.errors.Push(ui.TitleConfig, "Config changes will not be picked up until restart.", err)
	}

	go a.controller.Loop(ctx, a.queue.Tasks())
	go a.presentErrors(ctx)
	go func() {
		<-ctx.Done()
		a.tray.Quit()
	}()

	slog.Info("[app] running", "version", a.version, "config", a.currentConfig().Path())
	a.tray.Run()
	return nil
}

// startInput installs the low-level hook, or registers the legacy hotkeys
// when that is impossible.
func (a *Application) startInput() {
	h, err := hook.Install(a.dispatcher)
	if err == nil {
		a.hook = h
		return
	}
	if !errors.Is(err, hook.ErrHookUnsupported) {
		a.errors.Push(ui.TitleHook, "Keyboard hook unavailable; falling back to registered hotkeys.", err)
	}
	slog.Warn("[app] keyboard hook not installed, using legacy hotkeys", "error", err)

	backend := hotkey.SelectBackend()
	if backend == nil {
		a.errors.Push(ui.TitleHook, "No global hotkeys are available on this system.", hotkey.ErrBackendNotAvailable)
		return
	}
	a.hotkeys = hotkey.NewManager(a.currentConfig(), backend, a.postAction)
	if err := a.hotkeys.RegisterAll(); err != nil {
		a.errors.Push(ui.TitleHook, fmt.Sprintf("Some hotkeys could not be registered: %v", err), err)
	}
}

func (a *Application) postAction(action config.Action) error {
	return a.queue.Post(hook.Task{Kind: hook.TaskAction, Action: action})
}

func (a *Application) presentErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.errors.Signal():
			a.notifier.DrainAndPresent(a.errors)
		}
	}
}

func (a *Application) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.hook != nil {
		a.hook.Stop()
	}
	if a.hotkeys != nil {
		a.hotkeys.UnregisterAll()
	}
	if err := a.watcher.Close(); err != nil {
		slog.Debug("[app] watcher close failed", "error", err)
	}
	slog.Info("[app] stopped")
}

func (a *Application) currentConfig() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config
}

// applyConfig swaps in a validated config. Matcher tables are rebuilt from
// scratch.
func (a *Application) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.config = cfg
	a.mu.Unlock()

	a.dispatcher.SetConfig(cfg)
	a.engine.SetDelay(cfg.DelayMs)
	a.selection.SetDelay(cfg.DelayMs)
	a.journal.SetCapacity(cfg.JournalCapacity)
	a.notifier.SetEnabled(cfg.UseNotifications)
	a.tray.SetAutoconvert(cfg.AutoconvertEnabled)
	if a.hotkeys != nil {
		if err := a.hotkeys.SetConfig(cfg); err != nil {
			a.errors.Push(ui.TitleHook, fmt.Sprintf("Some hotkeys could not be registered after reload: %v", err), err)
		}
	}
}

func (a *Application) onConfigChanged(cfg *config.Config) {
	a.applyConfig(cfg)
	a.notifier.ShowNotification(AppName, "Configuration reloaded.")
}

func (a *Application) onConfigError(err error) {
	text := "Failed to load the configuration; previous settings are kept."
	var ve *config.ValidationError
	if errors.As(err, &ve) {
		text = ve.Message
	}
	a.errors.Push(ui.TitleConfig, text, err)
}

func (a *Application) onReloadConfig() {
	path := a.currentConfig().Path()
	cfg, err := config.Load(path)
	if err != nil {
		a.onConfigError(err)
		return
	}
	a.onConfigChanged(cfg)
}

func (a *Application) onOpenConfigFile() {
	path := a.currentConfig().Path()
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if _, err := os.Stat(absPath); err != nil {
		a.errors.Push(ui.TitleUI, fmt.Sprintf("Config file not found: %s", absPath), err)
		return
	}
	if err := ui.OpenFileInDefaultApp(absPath); err != nil {
		a.errors.Push(ui.TitleUI, fmt.Sprintf("Could not open config file '%s'.", absPath), err)
	}
}

func (a *Application) onShowHistory() {
	path, err := ui.WriteHistoryFile(a.history, AppName)
	if err != nil {
		a.errors.Push(ui.TitleUI, "Could not write the conversion history.", err)
		return
	}
	if err := ui.OpenFileInDefaultApp(path); err != nil {
		a.errors.Push(ui.TitleUI, "Could not open the conversion history.", err)
	}
}

func (a *Application) onPauseMenu(paused bool) {
	a.dispatcher.SetPaused(paused)
	if paused {
		a.journal.Clear()
	}
	slog.Info("[app] pause toggled", "paused", paused)
}

func (a *Application) onAutoconvertMenu(on bool) {
	a.dispatcher.SetAutoconvert(on)
	slog.Info("[app] autoconvert set from tray", "enabled", on)
}

func (a *Application) onAutoconvertToggled(on bool) {
	a.tray.SetAutoconvert(on)
	msg := "Autoconvert is off."
	if on {
		msg = "Autoconvert is on."
	}
	a.notifier.ShowNotification(AppName, msg)
}

func (a *Application) onConverted(c ui.Conversion) {
	a.history.Add(c)
	a.tray.SetLastConversion(a.history.MenuTitle())
}

func (a *Application) onQuit() {
	slog.Info("[app] quit requested")
	if a.cancel != nil {
		a.cancel()
	}
}
