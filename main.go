package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"ipdash/internal/config"
	"ipdash/internal/services"
	"ipdash/internal/snapshot"
)

var (
	cfgFile     string
	sourceFlag  string
	profileFlag string
	rdpOutDir   string
)

var rootCmd = &cobra.Command{
	Use:   "ipdash",
	Short: "Terminal dashboard for a host's local IP address",
	Long: `ipdash polls a data.json snapshot published by an IP monitor, shows the
current address, interface and change history, and opens the services
running at that address.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runDashboard,
}

var rdpCmd = &cobra.Command{
	Use:   "rdp <ip>",
	Short: "Write a remote desktop connection file for an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runRDP,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "data.json path or URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "layout profile: classic or portal (overrides config)")
	rdpCmd.Flags().StringVarP(&rdpOutDir, "out", "o", "", "output directory (default: download_dir from config)")
	rootCmd.AddCommand(onceCmd, rdpCmd)
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if sourceFlag != "" {
		cfg.Source = sourceFlag
	}
	if profileFlag != "" {
		cfg.Profile = profileFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	log, closer, err := newFileLogger(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	if err := a.runTUI(); err != nil {
		log.Error().Err(err).Msg("dashboard exited")
		return fmt.Errorf("run dashboard: %w", err)
	}
	log.Info().Msg("dashboard stopped")
	return nil
}

func runRDP(cmd *cobra.Command, args []string) error {
	ip := args[0]
	if snapshot.IsPlaceholder(ip) || net.ParseIP(ip) == nil {
		return fmt.Errorf("not an IP address: %q", ip)
	}
	dir := rdpOutDir
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.DownloadDir
	}
	path, err := services.DirSaver{Dir: dir}.Save(services.RDPFileName(ip), services.RDPMime, []byte(services.RDPProfile(ip)))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
