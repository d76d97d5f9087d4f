package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/go-mint-studio/config"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/directory"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
)

// GlobalFlags are the flags every command accepts.
type GlobalFlags struct {
	ConfigDir string
	Session   string
	Verbose   bool
}

var (
	globalFlags GlobalFlags
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mintctl",
	Short: "Terminal client for the mint studio",
	Long: `mintctl drives the mint studio from a terminal.

Browse the public gallery, open a project page, mint from the configured
wallet, and manage an artist account and its projects.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.App.LogLevel
		if !globalFlags.Verbose {
			level = "error"
		}
		if _, err := logging.Init(cfg.App.Environment, level); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigDir, "config-dir", "", "state directory (default: $XDG_CONFIG_HOME/mintctl)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Session, "session", "", "session id to use instead of the saved one")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log at the configured level instead of errors only")

	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(mintCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(availabilityCmd)
}

func newDirectory() *directory.Client {
	return directory.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
}

func stateDir() (string, error) {
	if globalFlags.ConfigDir != "" {
		return globalFlags.ConfigDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "mintctl"), nil
}

// sessionID returns the saved session id, creating and saving one on first use.
func sessionID() (string, error) {
	if globalFlags.Session != "" {
		return globalFlags.Session, nil
	}
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "session")

	raw, err := os.ReadFile(path)
	if err == nil && strings.TrimSpace(string(raw)) != "" {
		return strings.TrimSpace(string(raw)), nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read session file: %w", err)
	}

	sid := session.NewID()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sid+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write session file: %w", err)
	}
	return sid, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
