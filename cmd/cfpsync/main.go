package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/cfpsync/internal/avatar"
	"github.com/TobiSchelling/cfpsync/internal/config"
	"github.com/TobiSchelling/cfpsync/internal/database"
	"github.com/TobiSchelling/cfpsync/internal/export"
	"github.com/TobiSchelling/cfpsync/internal/imaging"
	"github.com/TobiSchelling/cfpsync/internal/pipeline"
	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
	"github.com/TobiSchelling/cfpsync/internal/sheet"
	"github.com/TobiSchelling/cfpsync/internal/survey"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	since      string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cfpsync",
	Short:   "Conference proposal sync",
	Long:    "cfpsync downloads call-for-papers submissions, normalizes them and appends new sessions to a spreadsheet.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&since, "since", "", "Only submissions since today, yesterday or YYYY-MM-DD")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(avatarsCmd)
	rootCmd.AddCommand(imagesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cfpsync", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/cfpsync/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the survey URL, the spreadsheet and the API key variable.")
		return nil
	},
}

// --- read-only commands ---

var countCmd = &cobra.Command{
	Use:       "count [sessions|speakers|proposals]",
	Short:     "Count resources",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"sessions", "speakers", "proposals"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindArg(args, resource.Sessions)
		if err != nil {
			return err
		}
		records, err := loadProposals(cmd.Context())
		if err != nil {
			return err
		}

		switch kind {
		case resource.Speakers:
			fmt.Println(len(resource.ProjectSpeakers(records)))
		default:
			fmt.Println(len(records))
		}
		return nil
	},
}

var showSummary bool

var showCmd = &cobra.Command{
	Use:       "show [proposals|sessions|speakers]",
	Short:     "Print resources in human readable form",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"sessions", "speakers", "proposals"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindArg(args, resource.Proposals)
		if err != nil {
			return err
		}
		records, err := loadProposals(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch kind {
		case resource.Sessions:
			return export.ShowSessions(out, resource.ProjectSessions(records))
		case resource.Speakers:
			return export.ShowSpeakers(out, resource.ProjectSpeakers(records))
		}
		return export.Show(out, records, showSummary)
	},
}

func init() {
	showCmd.Flags().BoolVar(&showSummary, "summary", false, "Show only a short summary of each proposal")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show distinct values of session and speaker fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadProposals(cmd.Context())
		if err != nil {
			return err
		}
		return export.WriteStats(cmd.OutOrStdout(), export.Summarize(records))
	},
}

// --- save / export commands ---

var savePath string

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save all proposals as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeExport(cmd.Context(), savePath, export.JSON)
	},
}

var (
	exportFormat string
	exportPath   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export proposals as csv, json or html",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		path := exportPath
		if path == "" {
			path = "proposals." + string(format)
		}
		return writeExport(cmd.Context(), path, format)
	},
}

func init() {
	saveCmd.Flags().StringVar(&savePath, "path", "./proposals.json", "Output path")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv, json or html")
	exportCmd.Flags().StringVar(&exportPath, "path", "", "Output path (default proposals.<format>)")
}

func writeExport(ctx context.Context, path string, format export.Format) error {
	records, err := loadProposals(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, format, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %d proposals to %s\n", len(records), path)
	return nil
}

// --- sync command ---

var dryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Append new sessions to the remote table: fetch -> normalize -> read -> plan -> append",
	RunE: func(cmd *cobra.Command, args []string) error {
		if since != "" {
			return errors.New("--since cannot be used with sync: the table mirrors the full submission history")
		}
		ctx := cmd.Context()

		table, closeTable, err := openTable(ctx)
		if err != nil {
			return err
		}
		defer closeTable()

		pipe := pipeline.New(surveyClient(), normalizer(), table, cfg.Table.Verify)
		log.Printf("Sync run %s", pipe.RunID())

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(ctx)
		} else {
			result = pipe.Run(ctx)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/5: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		return result.Err()
	},
}

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
}

// --- avatars / images commands ---

var avatarDir string

var avatarsCmd = &cobra.Command{
	Use:   "avatars",
	Short: "Download speaker avatars, falling back to the placeholder image",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadProposals(cmd.Context())
		if err != nil {
			return err
		}
		dir := avatarDir
		if dir == "" {
			dir = cfg.Avatars.Dir
		}

		a := cfg.Avatars
		resolver := avatar.NewResolver(a.PlaceholderURL, a.Timeout, a.FollowHTML)
		results, err := resolver.ResolveAll(cmd.Context(), resource.ProjectSpeakers(records), dir)
		if err != nil {
			return err
		}

		var saved, placeholders, failed int
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Printf("  %s: %v\n", r.SpeakerID, r.Err)
			case r.Placeholder:
				placeholders++
				fmt.Printf("  %s: placeholder (%v)\n", r.SpeakerID, r.Cause)
			default:
				saved++
			}
		}
		fmt.Printf("\nAvatars: %d saved, %d placeholders, %d failed\n", saved, placeholders, failed)
		return nil
	},
}

func init() {
	avatarsCmd.Flags().StringVar(&avatarDir, "dir", "", "Output directory (default from config)")
}

var imagesCmd = &cobra.Command{
	Use:   "images <root> [sizes...]",
	Short: "Resize avatars from <root>/avatars-unprocessed into square sizes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sizes := cfg.Images.Sizes
		if len(args) > 1 {
			sizes = nil
			for _, a := range args[1:] {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("invalid size %q", a)
				}
				sizes = append(sizes, n)
			}
		}

		results, err := imaging.Batch(cmd.Context(), imaging.NewCommand(cfg.Images.Command), args[0], sizes)
		for _, r := range results {
			fmt.Printf("%dx%d: %d converted, %d copied to %s\n", r.Size, r.Size, r.Converted, r.Failed, imaging.BadDir)
		}
		return err
	},
}

// --- helpers ---

func kindArg(args []string, def resource.Kind) (resource.Kind, error) {
	if len(args) == 0 {
		return def, nil
	}
	return resource.ParseKind(args[0])
}

func surveyClient() *survey.Client {
	s := cfg.Survey
	return survey.NewClient(s.URL, cfg.SurveyKey(), s.CompletedOnly, s.Timeout)
}

func normalizer() *proposal.Normalizer {
	return proposal.NewNormalizer(proposal.NewLabelTable(cfg.Labels))
}

// loadProposals fetches and normalizes submissions, most recent first,
// honoring --since.
func loadProposals(ctx context.Context) ([]proposal.Proposal, error) {
	var q survey.Query
	if since != "" {
		epoch, err := survey.ParseSince(since, time.Now())
		if err != nil {
			return nil, err
		}
		q.Since = epoch
	}

	payload, err := surveyClient().Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return normalizer().Normalize(payload)
}

// openTable returns the configured table backend and a func releasing it.
func openTable(ctx context.Context) (sheet.Table, func(), error) {
	t := cfg.Table
	switch t.Backend {
	case "sqlite":
		path := cfg.TablePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		db, err := database.Open(path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using local table store %s", db.Path())
		return db.Table(t.Sheet), func() { db.Close() }, nil
	default:
		s, err := sheet.NewSheets(ctx, sheet.SheetsConfig{
			SpreadsheetID:   t.SpreadsheetID,
			SpreadsheetName: t.SpreadsheetName,
			Sheet:           t.Sheet,
			CredentialsFile: t.CredentialsFile,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using spreadsheet %s", s.SpreadsheetID())
		return s, func() {}, nil
	}
}
