package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillq/pkg/logger"
	"github.com/jingkaihe/skillq/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLQ")
	viper.AutomaticEnv()

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
	viper.SetDefault("confirm_timeout", "30s")

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillq")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillq",
	Short: "Queue a skill for your next message",
	Long: `skillq is an interactive chat shell with a skill palette. Type /skill to pick
a skill; its instructions are attached to the next message you send.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", viper.GetString("log_level"), "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", viper.GetString("log_format"), "Log format (fmt or json)")

	rootCmd.PersistentFlags().BoolP("quiet", "q", viper.GetBool("quiet"), "Only print errors and requested content")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		cancel()
		os.Exit(1)
	}
}

// commandContext returns the command context, never nil
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func mustHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get user home directory:", err)
		return "."
	}
	return home
}
