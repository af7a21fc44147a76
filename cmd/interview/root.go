package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/config"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/db"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/logger"
)

const appName = config.App

var (
	// Used for flags.
	cfgFile string

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "interview-agent runs a spoken mock interview tailored to your resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, _ := cmd.Flags().GetString("resume")
			return runInterview(cmd.Context(), resume)
		},
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.Flags().StringP("resume", "r", "", "resume to preselect on the upload screen")

	v.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	v.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

// setup loads the config and builds the logger. The TUI owns the terminal,
// so it logs to log.file; other commands log to stderr.
func setup(fileLog bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	path := ""
	if fileLog {
		path = cfg.Log.File
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug, path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}

// openStore opens the history database named in the config.
func openStore(cfg *config.Config, log *zap.Logger) (*db.Store, error) {
	store, err := db.Open(cfg.Store.Path)
	if err != nil {
		log.Error("opening history", zap.String("path", cfg.Store.Path), zap.Error(err))
		return nil, fmt.Errorf("open history %s: %w", cfg.Store.Path, err)
	}
	return store, nil
}
