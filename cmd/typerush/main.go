// Package main provides the CLI entrypoint for typerush.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/saurabhk79/TypeRush/internal/config"
	"github.com/saurabhk79/TypeRush/internal/engine"
	"github.com/saurabhk79/TypeRush/internal/generator"
	"github.com/saurabhk79/TypeRush/internal/model"
	"github.com/saurabhk79/TypeRush/internal/remote"
	"github.com/saurabhk79/TypeRush/internal/stats"
	"github.com/saurabhk79/TypeRush/internal/store"
	"github.com/saurabhk79/TypeRush/internal/tui"
	"github.com/saurabhk79/TypeRush/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultWords       = 25
	defaultCaps        = 0.0
	defaultPunct       = 0.0
	defaultWeakTop     = 5
	defaultWeakFactor  = 1.5
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
)

const defaultPunctSet = ".,?!;:"

var (
	practiceDuration   int
	practiceGhost      bool
	practiceProfile    string
	practiceLang       string
	practiceWords      int
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practiceServer     string
	practiceEphemeral  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typerush",
		Short:         "Timed typing test with ghost races",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVar(&practiceDuration, "duration", model.DefaultDuration, "attempt length in seconds (30, 60, 120 or 300)")
	rootCmd.Flags().BoolVar(&practiceGhost, "ghost", false, "race against your previous attempt")
	rootCmd.Flags().StringVar(&practiceProfile, "profile", "", "profile id scores and ghosts are stored under")
	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "word list language")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per text")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias texts toward your most missed characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent attempts to compute weak characters")
	rootCmd.Flags().StringVar(&practiceServer, "server", "", "typerush server URL for texts, scores and ghosts")
	rootCmd.Flags().BoolVar(&practiceEphemeral, "ephemeral", false, "keep scores in memory only")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

type repository interface {
	engine.Repository
	stats.ScoreLister
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Practice.Duration)
	applyBoolConfig(cmd, "ghost", &practiceGhost, fileCfg.Practice.Ghost)
	applyStringConfig(cmd, "profile", &practiceProfile, fileCfg.Practice.Profile)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	cfg := model.Config{
		Lang:       practiceLang,
		Words:      practiceWords,
		CapsPct:    practiceCaps,
		PunctPct:   practicePunct,
		PunctSet:   practicePunctSet,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
		Duration:   practiceDuration,
		Ghost:      practiceGhost,
		Profile:    practiceProfile,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if cfg.Profile == "" {
		if cfg.Profile, err = config.LoadOrCreateProfile(config.DefaultProfilePath()); err != nil {
			return err
		}
	}

	wordPath := resolveWordListPath(cfg.Lang)
	words, err := wordlist.Load(wordPath, cfg.Lang)
	if err != nil {
		return wordListLoadError(cfg.Lang, wordPath, err)
	}

	logPath := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "typerush")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	repo, closeRepo, err := openPracticeRepository(practiceServer, practiceEphemeral)
	if err != nil {
		return err
	}
	defer closeRepo()

	ctx := context.Background()
	var text engine.TextProvider
	if client, ok := repo.(*remote.Client); ok {
		text = client
	} else {
		text = generator.NewProvider(nil, words, generator.Options{
			Words:      cfg.Words,
			CapsPct:    cfg.CapsPct,
			PunctPct:   cfg.PunctPct,
			PunctSet:   []rune(cfg.PunctSet),
			Weak:       loadWeakSet(ctx, repo, cfg),
			WeakFactor: cfg.WeakFactor,
		})
	}

	history, err := repo.ListScores(ctx, cfg.Profile)
	if err != nil {
		log.Printf("failed to load score history: %v", err)
	}

	m := tui.NewModel(ctx, tui.Options{
		Engine:  engine.Config{SessionID: cfg.Profile, Duration: cfg.Duration},
		Text:    text,
		Repo:    repo,
		Ghost:   cfg.Ghost,
		History: history,
		Logger:  log.Default(),
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// openPracticeRepository picks the remote server, an in-memory store or the SQLite database.
func openPracticeRepository(serverURL string, ephemeral bool) (repository, func(), error) {
	switch {
	case serverURL != "":
		return remote.New(serverURL, nil), func() {}, nil
	case ephemeral:
		mem := store.NewMemory()
		return mem, func() { _ = mem.Close() }, nil
	default:
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}, nil
	}
}

func loadWeakSet(ctx context.Context, lister stats.ScoreLister, cfg model.Config) map[rune]struct{} {
	if !cfg.FocusWeak {
		return nil
	}
	report, err := stats.BuildReport(ctx, lister, model.StatsConfig{Profile: cfg.Profile, Last: cfg.WeakWindow})
	if err != nil {
		log.Printf("failed to load weak characters: %v", err)
		return nil
	}
	weak := stats.WeakSet(report.Errors, cfg.WeakTop)
	if len(weak) == 0 {
		logErrln("no stats available for weak-char focus yet; using normal generator")
	}
	return weak
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := availableLangs(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// availableLangs lists the word lists in dir. English is always available from the bundled list.
func availableLangs(dir string) ([]string, error) {
	seen := map[string]struct{}{defaultLang: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		seen[strings.TrimSuffix(name, ".txt")] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if !model.ValidDuration(cfg.Duration) {
		return fmt.Errorf("--duration must be one of %v", model.DurationChoices)
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

// resolveWordListPath returns the user word list for lang, or "" to use the bundled English list.
func resolveWordListPath(lang string) string {
	path := config.DefaultWordListPath(lang)
	if _, err := os.Stat(path); err == nil || lang != defaultLang {
		return path
	}
	return ""
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Run: typerush langs",
	}
	return errors.New(strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}
