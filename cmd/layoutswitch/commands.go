package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/layout-switcher/internal/app"
	"github.com/TanaroSch/layout-switcher/internal/autoconvert"
	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/diffutil"
	"github.com/TanaroSch/layout-switcher/internal/hotkey"
	"github.com/TanaroSch/layout-switcher/internal/journal"
	"github.com/TanaroSch/layout-switcher/internal/layout"
)

const defaultCaptureTimeout = 5 * time.Second

var (
	convertTo   string
	convertDiff bool

	decideLayout string

	captureTimeout time.Duration
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the config file",
		Args:  cobra.NoArgs,
		RunE:  runValidateCmd,
	}
}

func runValidateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config: %s\n", cfg.Path())
	fmt.Fprintf(out, "delay_ms: %d, journal_capacity: %d, autoconvert: %t, notifications: %t\n",
		cfg.DelayMs, cfg.JournalCapacity, cfg.AutoconvertEnabled, cfg.UseNotifications)
	for _, a := range config.Actions() {
		line := fmt.Sprintf("%-18s %s", a.String(), hotkey.FormatSequence(cfg.Sequence(a)))
		if hk := cfg.LegacyHotkey(a); hk != nil {
			line += fmt.Sprintf(" (fallback: %s)", hotkey.FormatHotkey(hk))
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <text>...",
		Short: "Print text as if typed in the other layout",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runConvertCmd,
	}
	cmd.Flags().StringVar(&convertTo, "to", "", "target layout: en or ru (default: detect)")
	cmd.Flags().BoolVar(&convertDiff, "diff", false, "also print the character changes")
	return cmd
}

func runConvertCmd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	var converted string
	switch convertTo {
	case "":
		converted = layout.ConvertAuto(text)
	default:
		tag, err := layout.ParseTag(convertTo)
		if err != nil {
			return err
		}
		if !tag.Known() {
			return fmt.Errorf("--to must be en or ru")
		}
		// Text typed for tag came from the other layout.
		dir, _ := layout.DirectionFromTag(tag.Flip())
		converted = layout.Convert(text, dir)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, converted)
	if convertDiff {
		fmt.Fprintln(out, diffutil.Render(diffutil.Changes(text, converted)))
		fmt.Fprintln(out, diffutil.Summary(text, converted))
	}
	return nil
}

func newDecideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide <word>",
		Short: "Show whether autoconvert would convert a word",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecideCmd,
	}
	cmd.Flags().StringVar(&decideLayout, "layout", "", "layout the word was typed in: en or ru (default: detect)")
	return cmd
}

func runDecideCmd(cmd *cobra.Command, args []string) error {
	tag, err := layout.ParseTag(decideLayout)
	if err != nil {
		return err
	}
	return decide(cmd, autoconvert.NewLinguaModel(), args[0], tag)
}

func decide(cmd *cobra.Command, m autoconvert.Model, word string, tag layout.Tag) error {
	out := cmd.OutOrStdout()
	p := journal.NormalizePayload(word, "")
	converted, dir, reason := autoconvert.Candidate(p, tag, nil)
	if reason == autoconvert.SkipNone {
		reason = autoconvert.Decide(m, p.Word, converted)
	}
	if reason != autoconvert.SkipNone {
		fmt.Fprintf(out, "skip %q: %s\n", p.Word, reason)
		return nil
	}
	fmt.Fprintf(out, "convert %q -> %q (%s)\n", p.Word, converted, dir)
	return nil
}

func newCaptureCmd() *cobra.Command {
	names := make([]string, 0, len(config.Actions()))
	for _, a := range config.Actions() {
		names = append(names, a.String())
	}
	cmd := &cobra.Command{
		Use:       "capture <action>",
		Short:     "Record a new hotkey for an action and save it",
		Long:      "Every key is swallowed while capturing. Press the chord, or two chords in a row; the last recording is saved when the timeout expires.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE:      runCaptureCmd,
	}
	cmd.Flags().DurationVar(&captureTimeout, "timeout", defaultCaptureTimeout, "how long to record")
	return cmd
}

func runCaptureCmd(cmd *cobra.Command, args []string) error {
	action, err := config.ParseAction(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "recording %s for %s...\n", action, captureTimeout)

	saved, err := app.Capture(context.Background(), cfg, action, captureTimeout, func(u hotkey.CaptureUpdate) {
		fmt.Fprintln(out, u.Text)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s = %s\n", action, hotkey.FormatSequence(saved.Sequence(action)))
	return nil
}
