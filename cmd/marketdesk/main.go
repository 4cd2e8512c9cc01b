// Command marketdesk runs the capital-markets surveillance, regime and regulatory desk.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/marketdesk/api"
	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg     *config.Config
	log     *zap.Logger
	syncLog = func() error { return nil }
)

func main() {
	err := rootCmd.Execute()
	_ = syncLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketdesk",
	Short: "MarketDesk — surveillance, regime and regulatory analysis",
	Long: `MarketDesk runs the analysis desk of a capital-markets firm:
trade surveillance with SAR memos, market regime detection with hedges,
regulatory impact mapping and client meeting briefs. Every run is
recorded in an audit log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if dir, _ := cmd.Flags().GetString("data"); dir != "" {
			cfg.Data.Dir = dir
		}

		log, syncLog, err = logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		api.Version = version
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data", "", "sample data directory (default: ./data, embedded copy when missing)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(surveillanceCmd)
	rootCmd.AddCommand(regimeCmd)
	rootCmd.AddCommand(regimpactCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(meetingsCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(auditCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MarketDesk %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		srv := api.NewServer(cfg, log)
		fmt.Printf("🌐 Starting MarketDesk API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port override")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "Mock"
		if cfg.LiveAvailable() {
			mode = "Live"
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  MarketDesk — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Config file:   %s\n", config.ConfigFilePath())
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Mode:      %s (model: %s)\n", mode, cfg.LLM.Model)
		fmt.Printf("    Sample data:   %s\n", cfg.Data.Dir)
		fmt.Printf("    Audit log:     %d entries max\n", cfg.Audit.Capacity)
		fmt.Printf("    Significance:  %s\n", cfg.Regime.Significance)
		fmt.Printf("    Reg. feeds:    %d\n", len(cfg.Feeds.Regulatory))
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
