package cli

import (
	"fmt"
	"os"

	intconfig "tripmarket/internal/config"
	"tripmarket/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	envFile string
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "tripmarket",
		Short:         "tripmarket - travel booking marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "optional .env file read before the environment")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadEnv reads configuration and applies the process-wide logger and gin settings.
func loadEnv() (intconfig.Env, error) {
	env, err := intconfig.LoadEnv(envFile)
	if err != nil {
		return intconfig.Env{}, fmt.Errorf("load config: %w", err)
	}
	utils.ConfigureLogger(env.LogLevel, env.LogFormat)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	return env, nil
}
