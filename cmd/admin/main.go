package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "leaddesk-admin",
	Short: "Lead desk admin CLI",
	Long: `leaddesk-admin works the consultation inbox from a terminal.
The interactive board, listing and status updates talk to a running lead
service over HTTP; migrate and hash-password act locally.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	_ = godotenv.Load()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("api", "LEADDESK_API")
	_ = viper.BindEnv("api-key", "ADMIN_API_KEY")
	_ = viper.BindEnv("origin", "ADMIN_ORIGIN")
	_ = viper.BindEnv("timezone", "TIMEZONE")
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("api", "http://localhost:8080", "lead service base URL")
	rootCmd.PersistentFlags().String("api-key", "", "admin API key (X-API-Key)")
	rootCmd.PersistentFlags().String("origin", "", "admin origin sent with status updates")
	rootCmd.PersistentFlags().String("timezone", "Asia/Seoul", "timezone for displayed dates")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "per-request timeout")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	for _, name := range []string{"api", "api-key", "origin", "timezone", "timeout", "json"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(setStatusCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())
}
