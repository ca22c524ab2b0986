//go:build windows

package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-toast/toast"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	iconPath := ""
	if len(n.embeddedIcon) > 0 {
		p, err := writeTempIcon(n.embeddedIcon)
		if err != nil {
			slog.Debug("[ui] temporary icon not written", "error", err)
		} else {
			iconPath = p
			time.AfterFunc(10*time.Second, func() {
				if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
					slog.Debug("[ui] temporary icon not removed", "path", p, "error", err)
				}
			})
		}
	}

	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    iconPath,
	}
	if err := notification.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			return fmt.Errorf("toast: notifications disabled in Windows settings: %w", err)
		}
		return fmt.Errorf("toast: %w", err)
	}
	return nil
}

func writeTempIcon(iconData []byte) (string, error) {
	if len(iconData) == 0 {
		return "", errors.New("cannot write empty icon data")
	}
	tmpFile, err := os.CreateTemp("", "layoutswitch-icon-*.ico")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(iconData); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", err
	}
	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		return tmpFile.Name(), nil
	}
	return absPath, nil
}
