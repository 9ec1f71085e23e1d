package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"balatro-setup/internal/version"
	"balatro-setup/pkg/config"
	"balatro-setup/pkg/logging"
	"balatro-setup/pkg/prompt"
	"balatro-setup/pkg/setup"
)

var (
	verbosity   int
	installDir  string
	modArchives []string
	assumeYes   bool

	rootCmd = &cobra.Command{
		Use:   "balatro-setup",
		Short: "Set up Balatro modding on Linux",
		Long: `balatro-setup prepares a Steam installation of Balatro for modding.

It locates the game across native, Flatpak and Snap Steam installs, downloads
and installs the Lovely injector and Steamodded, and can install arbitrary
mod archives into the game's Mods directory.

Run without arguments for the full setup, or pass --mod to install archives
without touching the modding components.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSetup,
	}
)

// Execute runs the root command; called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().StringVar(&installDir, "install-dir", "", "Balatro install directory (skips auto-detection)")
	rootCmd.Flags().StringArrayVar(&modArchives, "mod", nil, "Mod archive to install (repeatable); skips component installation")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	modsOnly := len(modArchives) > 0
	if !modsOnly && !assumeYes {
		ok := prompt.Confirm("This will download and install the Lovely injector and Steamodded. Continue?", true)
		if !ok {
			pterm.Info.Println("Aborted.")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = setup.Run(ctx, setup.Options{
		Config:      cfg,
		InstallDir:  installDir,
		ModArchives: modArchives,
		ModsOnly:    modsOnly,
		Prompt:      prompt.Interactive{},
	})
	if err != nil {
		return err
	}

	pterm.Success.Println("All done. Have fun!")
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("balatro-setup version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration as TOML, after merging built-in
defaults, the user config file and environment overrides. The output can be
saved as a starting point for a user config file:

  balatro-setup config > ` + "~/.config/balatro-setup/config.toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		out, err := config.Dump(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
