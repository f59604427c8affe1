package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillq/pkg/hooks"
	"github.com/jingkaihe/skillq/pkg/inject"
	"github.com/jingkaihe/skillq/pkg/logger"
	"github.com/jingkaihe/skillq/pkg/presenter"
	"github.com/jingkaihe/skillq/pkg/queue"
	"github.com/jingkaihe/skillq/pkg/skills"
	"github.com/jingkaihe/skillq/pkg/transcript"
	"github.com/jingkaihe/skillq/pkg/tui"
)

// ChatConfig holds the settings of an interactive session
type ChatConfig struct {
	LogFile    string
	Transcript string
	NoHooks    bool
}

// NewChatConfig creates a ChatConfig from viper defaults
func NewChatConfig() *ChatConfig {
	logFile := viper.GetString("log_file")
	if logFile == "" {
		logFile = filepath.Join(mustHomeDir(), ".skillq", "skillq.log")
	}
	return &ChatConfig{
		LogFile:    logFile,
		Transcript: viper.GetString("transcript"),
		NoHooks:    false,
	}
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session. Use /skill to open the skill palette;
the queued skill is attached to the next message you send.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getChatConfigFromFlags(cmd)
		return runChat(cmd, config)
	},
}

func init() {
	chatCmd.Flags().String("log-file", "", "File the chat session logs to (default ~/.skillq/skillq.log)")
	chatCmd.Flags().String("transcript", "", "Append sent messages as JSON lines to this file")
	chatCmd.Flags().Bool("no-hooks", false, "Do not load external before_message_send hooks")
}

// getChatConfigFromFlags applies explicitly set flags over the configuration
func getChatConfigFromFlags(cmd *cobra.Command) *ChatConfig {
	config := NewChatConfig()
	if cmd.Flags().Changed("log-file") {
		if logFile, err := cmd.Flags().GetString("log-file"); err == nil && logFile != "" {
			config.LogFile = logFile
		}
	}
	if cmd.Flags().Changed("transcript") {
		if path, err := cmd.Flags().GetString("transcript"); err == nil {
			config.Transcript = path
		}
	}
	if noHooks, err := cmd.Flags().GetBool("no-hooks"); err == nil {
		config.NoHooks = noHooks
	}
	return config
}

func runChat(cmd *cobra.Command, config *ChatConfig) error {
	ctx := commandContext(cmd)

	logFile, err := logger.OpenLogFile(config.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log := logger.G(ctx)

	catalog, err := skills.Initialize(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load skills")
	}
	log.WithField("skills", len(catalog)).Info("skill catalog loaded")

	slot := queue.NewSlot()
	status := tui.NewStatusBar()

	registry := hooks.NewRegistry()
	inject.Register(registry, inject.New(slot, status))
	if !config.NoHooks {
		if err := registry.LoadExternal(ctx); err != nil {
			log.WithError(err).Warn("failed to load external hooks")
		}
	}

	sender, err := transcript.Open(config.Transcript)
	if err != nil {
		return err
	}
	defer sender.Close()

	if err := tui.StartChat(ctx, tui.Options{
		Catalog:        catalog,
		Slot:           slot,
		Status:         status,
		Hooks:          registry,
		Sender:         sender,
		ConfirmTimeout: viper.GetDuration("confirm_timeout"),
	}); err != nil {
		return err
	}

	if config.Transcript != "" {
		presenter.Success(fmt.Sprintf("Transcript saved to %s", config.Transcript))
	}
	return nil
}
