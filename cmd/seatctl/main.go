package main

import (
	"fmt"
	"os"

	"ticketcore/internal/shared/config"
	"ticketcore/internal/shared/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seatctl",
	Short: "Operator CLI for the seat inventory and booking core",
	Long:  `Seed demo data, inspect session occupancy and clean up abandoned bookings.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of seatctl",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("seatctl v0.1")
	},
}

func main() {
	rootCmd.AddCommand(versionCmd, newSeedCmd(), newOccupancyCmd(), newFailPendingCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads the configuration and opens the database
func connect() (*config.Config, *database.DB, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// the CLI never owns sessions
	cfg.Redis.Enabled = false

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
