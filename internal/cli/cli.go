package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"audiotest.click/internal/audio"
	"audiotest.click/internal/config"
	"audiotest.click/internal/fs"
)

const Version = "0.3.0"

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	configManager    *config.ConfigManager
	backendFactory   audio.BackendFactory
	terminalDetector TerminalDetector
	fsFactory        fs.Factory

	cfg     *config.Config
	logFile io.Closer
}

// NewCLI creates a CLI on the real filesystem and audio devices
func NewCLI() *CLI {
	fsFactory := fs.NewDefaultFactory()
	return newCLI(
		fsFactory,
		config.NewConfigManagerWithFilesystem(fsFactory.Production()),
		audio.NewBackendFactory(),
		&DefaultTerminalDetector{},
	)
}

func newCLI(fsFactory fs.Factory, cm *config.ConfigManager, factory audio.BackendFactory, detector TerminalDetector) *CLI {
	c := &CLI{
		configManager:    cm,
		backendFactory:   factory,
		terminalDetector: detector,
		fsFactory:        fsFactory,
	}

	rootCmd := &cobra.Command{
		Use:           "audiotest",
		Short:         "WAV header inspector and player",
		Long:          "audiotest parses RIFF/WAVE headers, including damaged ones, and plays PCM clips through the configured audio backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if version, _ := cmd.Flags().GetBool("version"); version {
				c.printVersion(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadAndValidateConfig(cmd)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.setupLogging(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("volume", "", "Set volume (0.0 to 1.0)")
	rootCmd.PersistentFlags().String("backend", "", "Audio backend (auto, malgo, oto, system_command, null)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("silent", false, "Silent mode - play through the null backend")
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(newInfoCommand(c))
	rootCmd.AddCommand(newPlayCommand(c))
	rootCmd.AddCommand(newConfigCommand(c))

	c.rootCmd = rootCmd
	return c
}

// Run executes the CLI with the given arguments and I/O streams
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	slog.Debug("CLI run started", "args", args)

	// Version needs neither config nor audio
	if len(args) > 1 && (args[1] == "--version" || args[1] == "-v") {
		c.printVersion(stdout)
		return 0
	}

	defer func() {
		if c.logFile != nil {
			c.logFile.Close()
			c.logFile = nil
		}
	}()

	if len(args) > 0 {
		args = args[1:]
	}
	c.rootCmd.SetArgs(args)
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}

func (c *CLI) printVersion(w io.Writer) {
	fmt.Fprintf(w, "audiotest version %s\n", Version)
}

// loadAndValidateConfig loads configuration from flags and files, applies
// environment and flag overrides, and validates the result
func (c *CLI) loadAndValidateConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	volumeStr, _ := cmd.Flags().GetString("volume")
	backend, _ := cmd.Flags().GetString("backend")
	logLevel, _ := cmd.Flags().GetString("log-level")
	silent, _ := cmd.Flags().GetBool("silent")

	var volume float64
	if volumeStr != "" {
		vol, err := strconv.ParseFloat(volumeStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid volume value '%s': %w", volumeStr, err)
		}
		if vol < 0.0 || vol > 1.0 {
			return nil, fmt.Errorf("volume must be between 0.0 and 1.0, got %g", vol)
		}
		volume = vol
	}

	if backend != "" && !c.backendFactory.IsValidBackendType(backend) {
		return nil, fmt.Errorf("%w: %s (supported: %v)", audio.ErrInvalidBackendType, backend, c.backendFactory.GetSupportedBackends())
	}

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = c.configManager.LoadFromFile(configFile)
		if errors.Is(err, iofs.ErrNotExist) {
			slog.Warn("config file not found, using defaults", "file", configFile)
			cfg, err = c.configManager.GetDefaultConfig(), nil
		}
	} else {
		cfg, err = c.configManager.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	cfg = c.configManager.ApplyEnvironmentOverrides(cfg)

	flagOverrides := &config.Config{AudioBackend: backend, LogLevel: logLevel}
	if volumeStr != "" {
		flagOverrides.Volume = &volume
	}
	cfg = c.configManager.MergeConfigs(cfg, flagOverrides)

	if silent {
		cfg.AudioBackend = audio.BackendNull
		slog.Debug("silent mode enabled")
	}

	if err := c.configManager.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends records at the configured level to stderr and, when
// file logging is enabled, every record to a rotating log file
func (c *CLI) setupLogging(stderr io.Writer) {
	level, err := config.ParseLogLevel(c.cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	levelName := strings.ToLower(level.String())

	fileWriter := c.openLogFile()
	if fileWriter == nil {
		if err := c.configManager.ApplyLogLevelWithWriter(levelName, stderr); err != nil {
			slog.Error("failed to configure logging", "error", err)
		}
		return
	}

	c.logFile = fileWriter
	slog.SetDefault(slog.New(NewMultiLevelHandler(
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
		slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)))

	slog.Debug("logging setup completed",
		"level", levelName,
		"log_file", fileWriter.Filename)
}

// openLogFile returns the rotating log writer, or nil when file logging is
// disabled or its directory cannot be created
func (c *CLI) openLogFile() *lumberjack.Logger {
	fl := c.cfg.FileLogging
	if fl == nil || !fl.Enabled {
		return nil
	}

	logFilePath := c.configManager.ResolveLogFilePath(fl.Filename)
	logDir := filepath.Dir(logFilePath)
	if err := c.fsFactory.Production().MkdirAll(logDir, 0755); err != nil {
		slog.Error("failed to create log directory", "path", logDir, "error", err)
		return nil
	}

	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    fl.MaxSizeMB,
		MaxBackups: fl.MaxBackups,
		MaxAge:     fl.MaxAgeDays,
		Compress:   fl.Compress,
	}
}
