package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MuthoniGathiithi/filehound/internal/config"
	"github.com/MuthoniGathiithi/filehound/internal/indexer"
	"github.com/MuthoniGathiithi/filehound/internal/log"
	"github.com/MuthoniGathiithi/filehound/internal/search"
	"github.com/MuthoniGathiithi/filehound/internal/watcher"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	Version   string = "dev"
	buildTime string = "unknown"
	commit    string = "unknown"

	configFile string
	dataDir    string
	roots      []string
	verbose    bool

	searchTerm    string
	searchMax     int
	searchCase    bool
	searchNoIndex bool

	indexLimit int
	accessKind string
	pruneDays  int
)

var (
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var rootCmd = &cobra.Command{
	Use:   "filehound",
	Short: "Ranked local file search",
	Long:  "Finds files by fuzzy name match, cached content and access history, with a live scan fallback for anything not yet indexed",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel("debug")
		}
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for files by name and content",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the configured roots",
	RunE:  runIndex,
}

var accessCmd = &cobra.Command{
	Use:   "access <path>",
	Short: "Record a file access so recency ranking learns from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccess,
}

var lostFileCmd = &cobra.Command{
	Use:   "lost-file <description>",
	Short: "Find a lost file from a free-form description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLostFile,
}

var byDateCmd = &cobra.Command{
	Use:   "by-date <date>",
	Short: "List files worked on around a date ('yesterday', 'last tuesday', '2023-12-15')",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runByDate,
}

var withContentCmd = &cobra.Command{
	Use:   "with-content <text>",
	Short: "Find files whose content mentions the given text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithContent,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the configured roots and keep the index live",
	RunE:  runWatch,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop old access events from the store",
	RunE:  runPrune,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		log.Infof("filehound version %s", Version)
		log.Infof("  Build time: %s", buildTime)
		log.Infof("  Commit: %s", commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: ~/.config/filehound/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "store location override")
	rootCmd.PersistentFlags().StringArrayVar(&roots, "root", nil, "root directory to index/scan (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	searchCmd.Flags().StringVar(&searchTerm, "search", "", "search term (alternative to the positional argument)")
	searchCmd.Flags().IntVar(&searchMax, "max", 20, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchCase, "case", false, "case-sensitive matching during live scans")
	searchCmd.Flags().BoolVar(&searchNoIndex, "no-index", false, "skip the index, scan the filesystem directly")

	indexCmd.Flags().IntVar(&indexLimit, "limit", 0, "stop after indexing this many files (0 = config default)")

	accessCmd.Flags().StringVar(&accessKind, "kind", "opened", "access kind: opened, modified, created")

	pruneCmd.Flags().IntVar(&pruneDays, "older-than", 90, "drop access events older than this many days")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(accessCmd)
	rootCmd.AddCommand(lostFileCmd)
	rootCmd.AddCommand(byDateCmd)
	rootCmd.AddCommand(withContentCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(versionCmd)
}

func buildConfig() *config.Config {
	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if len(roots) > 0 {
		cfg.Roots = roots
	}
	cfg.BuildMaps()

	return cfg
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := searchTerm
	if query == "" && len(args) > 0 {
		query = args[0]
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("nothing to search for: pass a query or --search <term>")
	}

	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	out := engine.Search(query, search.Options{
		MaxResults:    searchMax,
		UseIndex:      !searchNoIndex,
		Roots:         cfg.Roots,
		CaseSensitive: searchCase,
	})

	if out.StoreDegraded {
		log.Warnf("index store unavailable, results come from a live scan only")
	}
	if out.SkippedEntries > 0 {
		log.Debugf("skipped %d unreadable entries during scan", out.SkippedEntries)
	}

	if len(out.Results) == 0 {
		fmt.Println(dimStyle.Render("No matches found"))
		os.Exit(1)
	}

	for i, res := range out.Results {
		fmt.Printf("%d. %s %s\n", i+1, res.Path, scoreStyle.Render(fmt.Sprintf("(score: %d)", res.Score)))
	}

	suffix := ""
	if out.FallbackUsed {
		suffix = dimStyle.Render(" (live scan included)")
	}
	fmt.Println(countStyle.Render(fmt.Sprintf("%d matches", len(out.Results))) + suffix)
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	if engine.Store() == nil {
		return fmt.Errorf("cannot open index store under %s", cfg.DataDir)
	}

	if indexLimit > 0 {
		cfg.FileCountLimit = indexLimit
	}
	ix := indexer.New(engine.Store(), cfg)

	status := engine.IndexFilesForSearch(ix)
	log.Infof("%s", status)
	return nil
}

func runAccess(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	if err := engine.RecordFileAccess(args[0], accessKind); err != nil {
		return err
	}
	log.Infof("recorded %s event for %s", accessKind, args[0])
	return nil
}

func runLostFile(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	fmt.Println(engine.FindLostFile(strings.Join(args, " ")))
	return nil
}

func runByDate(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	fmt.Println(engine.FindFilesByDate(strings.Join(args, " ")))
	return nil
}

func runWithContent(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	fmt.Println(engine.FindFileWithContent(strings.Join(args, " ")))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	st := engine.Store()
	if st == nil {
		return fmt.Errorf("cannot open index store under %s", cfg.DataDir)
	}

	ix := indexer.New(st, cfg)

	count, err := st.FileCount()
	if err == nil && count == 0 {
		log.Infof("index is empty, building initial index...")
		go func() {
			if indexed, err := ix.IndexRoots(cfg.Roots, cfg.FileCountLimit); err != nil {
				log.Errorf("initial index build failed: %v", err)
			} else {
				log.Infof("initial index build complete: %d files", indexed)
			}
		}()
	}

	w, err := watcher.New(ix, st, cfg)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Infof("received shutdown signal")
	return w.Stop()
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	engine := search.Open(cfg)
	defer engine.Close()

	st := engine.Store()
	if st == nil {
		return fmt.Errorf("cannot open index store under %s", cfg.DataDir)
	}

	cutoff := time.Now().AddDate(0, 0, -pruneDays)
	pruned, err := st.PruneAccessEvents(cutoff)
	if err != nil {
		return err
	}
	log.Infof("pruned %d access events older than %d days", pruned, pruneDays)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
