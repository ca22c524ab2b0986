package ui

import (
	"errors"

	"github.com/ncruces/zenity"
)

// ShowErrorDialog shows a blocking error dialog. Dismissing it is not an
// error.
func ShowErrorDialog(title, text string) error {
	err := zenity.Error(text, zenity.Title(title), zenity.ErrorIcon)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	return err
}

// ShowInfoDialog shows a blocking information dialog.
func ShowInfoDialog(title, text string) error {
	err := zenity.Info(text, zenity.Title(title), zenity.InfoIcon)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	return err
}
