package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/saurabhk79/TypeRush/internal/config"
	"github.com/saurabhk79/TypeRush/internal/model"
	"github.com/saurabhk79/TypeRush/internal/stats"
)

const defaultCurveWidth = 60

var (
	statsProfile     string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsServer      string

	historyProfile string
	historyLast    int
	historyFormat  string
	historyServer  string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show score summary, speed curve and most missed keys",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsProfile, "profile", "", "profile to report on (default: this machine's profile)")
	cmd.Flags().StringVar(&statsSince, "since", "", "only include attempts since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "only include the last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the speed curve")
	cmd.Flags().StringVar(&statsServer, "server", "", "read scores from a typerush server")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	profile, err := resolveProfile(statsProfile)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openPracticeRepository(statsServer, false)
	if err != nil {
		return err
	}
	defer closeRepo()

	report, err := stats.BuildReport(context.Background(), repo, model.StatsConfig{
		Profile:     profile,
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Scores); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	if err := stats.RenderSpeedCurve(out, report.Scores, statsCurveWindow, curveWidth()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	return stats.RenderErrorTable(out, report.Errors)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past attempts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyProfile, "profile", "", "profile to list (default: this machine's profile)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "only list the last N attempts")
	cmd.Flags().StringVar(&historyFormat, "format", "table", "output format: table, json or yaml")
	cmd.Flags().StringVar(&historyServer, "server", "", "read scores from a typerush server")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	profile, err := resolveProfile(historyProfile)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openPracticeRepository(historyServer, false)
	if err != nil {
		return err
	}
	defer closeRepo()

	scores, err := repo.ListScores(context.Background(), profile)
	if err != nil {
		return fmt.Errorf("failed to list scores: %w", err)
	}
	if historyLast > 0 && len(scores) > historyLast {
		scores = scores[len(scores)-historyLast:]
	}
	return writeHistory(cmd.OutOrStdout(), scores, historyFormat)
}

// historyEntry is the serialized form of one attempt.
type historyEntry struct {
	ID         string         `json:"id" yaml:"id"`
	RecordedAt string         `json:"recorded_at" yaml:"recorded_at"`
	WPM        int            `json:"wpm" yaml:"wpm"`
	Accuracy   int            `json:"accuracy" yaml:"accuracy"`
	Keystrokes int            `json:"keystrokes" yaml:"keystrokes"`
	Duration   int            `json:"duration" yaml:"duration"`
	Errors     map[string]int `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func writeHistory(w io.Writer, scores []model.ScoreRecord, format string) error {
	entries := lo.Map(scores, func(s model.ScoreRecord, _ int) historyEntry {
		return historyEntry{
			ID:         s.ID,
			RecordedAt: s.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			WPM:        s.NetSpeed,
			Accuracy:   s.Accuracy,
			Keystrokes: s.Keystrokes,
			Duration:   s.Duration,
			Errors:     s.Errors,
		}
	})
	switch format {
	case "table":
		return stats.RenderHistory(w, scores)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("--format must be one of table, json, yaml")
	}
}

func resolveProfile(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg.Practice.Profile != nil && *fileCfg.Practice.Profile != "" {
		return *fileCfg.Practice.Profile, nil
	}
	return config.LoadOrCreateProfile(config.DefaultProfilePath())
}

func curveWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultCurveWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultCurveWidth
	}
	return max(width-10, 10)
}
