package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
)

// TrayCallbacks are invoked from menu goroutines. Nil callbacks are skipped.
type TrayCallbacks struct {
	OnPause        func(paused bool)
	OnAutoconvert  func(enabled bool)
	OnShowHistory  func()
	OnReloadConfig func()
	OnOpenConfig   func()
	OnQuit         func()
}

// SystrayManager owns the tray icon and its menu.
type SystrayManager struct {
	appName      string
	version      string
	embeddedIcon []byte
	cb           TrayCallbacks

	mu          sync.Mutex
	paused      bool
	autoconvert bool
	lastTitle   string
	miPause     *systray.MenuItem
	miAuto      *systray.MenuItem
	miLast      *systray.MenuItem
}

// NewSystrayManager creates the tray manager. autoconvert is the initial
// state of the Autoconvert checkbox.
func NewSystrayManager(appName, version string, embeddedIcon []byte, autoconvert bool, cb TrayCallbacks) *SystrayManager {
	return &SystrayManager{
		appName:      appName,
		version:      version,
		embeddedIcon: embeddedIcon,
		cb:           cb,
		autoconvert:  autoconvert,
		lastTitle:    "Last conversion: none",
	}
}

// Run starts the tray loop; it blocks until Quit.
func (s *SystrayManager) Run() {
	systray.Run(s.onReady, s.onExit)
}

// Quit stops the tray loop.
func (s *SystrayManager) Quit() { systray.Quit() }

// SetAutoconvert updates the Autoconvert checkbox.
func (s *SystrayManager) SetAutoconvert(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoconvert = on
	setChecked(s.miAuto, on)
	s.updateTooltipLocked()
}

// SetPaused updates the Pause checkbox.
func (s *SystrayManager) SetPaused(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = on
	setChecked(s.miPause, on)
	s.updateTooltipLocked()
}

// SetLastConversion replaces the informational last-conversion line.
func (s *SystrayManager) SetLastConversion(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTitle = title
	if s.miLast != nil {
		s.miLast.SetTitle(title)
	}
}

func setChecked(mi *systray.MenuItem, on bool) {
	if mi == nil {
		return
	}
	if on {
		mi.Check()
	} else {
		mi.Uncheck()
	}
}

func (s *SystrayManager) statusLocked() string {
	switch {
	case s.paused:
		return "paused"
	case s.autoconvert:
		return "autoconvert on"
	default:
		return "autoconvert off"
	}
}

func (s *SystrayManager) updateTooltipLocked() {
	if s.miPause == nil {
		return
	}
	systray.SetTooltip(fmt.Sprintf("%s %s (%s)", s.appName, s.version, s.statusLocked()))
}

func (s *SystrayManager) onReady() {
	title := fmt.Sprintf("%s %s", s.appName, s.version)
	systray.SetTitle(title)
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	} else {
		slog.Warn("[ui] no embedded icon for the tray")
	}

	miVersion := systray.AddMenuItem("Version: "+s.version, s.appName+" version")
	miVersion.Disable()
	systray.AddSeparator()

	s.mu.Lock()
	s.miPause = systray.AddMenuItemCheckbox("Pause", "Stop tracking input and autoconvert; hotkeys keep working", s.paused)
	s.miAuto = systray.AddMenuItemCheckbox("Autoconvert", "Convert words typed in the wrong layout automatically", s.autoconvert)
	s.miLast = systray.AddMenuItem(s.lastTitle, "Most recent conversion")
	s.miLast.Disable()
	s.updateTooltipLocked()
	s.mu.Unlock()

	miHistory := systray.AddMenuItem("Recent Conversions", "Show recent conversions in the browser")
	systray.AddSeparator()
	miReload := systray.AddMenuItem("Reload Configuration", "Reload config.json")
	miOpen := systray.AddMenuItem("Open Config File", "Open config.json in default editor")
	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	handle(s.miPause.ClickedCh, "pause", func() {
		s.mu.Lock()
		on := !s.paused
		s.mu.Unlock()
		s.SetPaused(on)
		if s.cb.OnPause != nil {
			s.cb.OnPause(on)
		}
	})
	handle(s.miAuto.ClickedCh, "autoconvert", func() {
		s.mu.Lock()
		on := !s.autoconvert
		s.mu.Unlock()
		s.SetAutoconvert(on)
		if s.cb.OnAutoconvert != nil {
			s.cb.OnAutoconvert(on)
		}
	})
	handle(miHistory.ClickedCh, "history", s.cb.OnShowHistory)
	handle(miReload.ClickedCh, "reload", s.cb.OnReloadConfig)
	handle(miOpen.ClickedCh, "open config", s.cb.OnOpenConfig)

	go func() {
		<-miQuit.ClickedCh
		slog.Info("[ui] quit requested")
		if s.cb.OnQuit != nil {
			s.cb.OnQuit()
		}
		systray.Quit()
	}()

	slog.Info("[ui] tray ready")
}

func (s *SystrayManager) onExit() {
	slog.Info("[ui] tray exiting")
}

// handle runs fn for every click. A panicking handler is logged and the menu
// item keeps working.
func handle(ch <-chan struct{}, name string, fn func()) {
	if fn == nil {
		return
	}
	go func() {
		for range ch {
			func() {
				defer func() {
					if r := recover(); r != nil {
						slog.Error("[ui] recovered from panic in menu handler", "item", name, "panic", r)
					}
				}()
				slog.Debug("[ui] menu item clicked", "item", name)
				fn()
			}()
		}
	}()
}
