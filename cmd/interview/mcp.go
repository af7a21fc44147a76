package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the interview history to MCP clients over stdio",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup(false)
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		log.Info("serving mcp", zap.String("store", cfg.Store.Path))
		return mcptools.Serve(store, version, log)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
