package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obentoo/waybar-updates/internal/common/config"
	"github.com/obentoo/waybar-updates/internal/common/logger"
	"github.com/obentoo/waybar-updates/internal/common/output"
	"github.com/obentoo/waybar-updates/internal/pacman"
	"github.com/obentoo/waybar-updates/internal/render"
	"github.com/obentoo/waybar-updates/internal/watch"
)

var (
	flagConfig  string
	flagNoColor bool

	flagInterval        = config.Defaults().Interval
	flagNetworkInterval = config.Defaults().NetworkInterval
	flagTimeout         = config.Defaults().Timeout
	flagNoZeroOutput    bool
	flagNoAUR           bool
	flagAlignWidth      int
	flagTooltipFont     string
	flagColors          string
	flagTheme           string
	flagLogFile         string
	flagLogLevel        string
)

var rootCmd = &cobra.Command{
	Use:   "waybar-updates",
	Short: "Pacman and AUR update indicator for waybar",
	Long: `Polls for pending pacman and AUR updates and streams waybar JSON
records to stdout: a cheap local check every few seconds plus a full
network check on a slower cadence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&flagConfig, "config", "c", "", "Config file path (default: XDG lookup)")
	flags.BoolVar(&flagNoColor, "no-color", false, "Disable colored diagnostics on stderr")

	flags.DurationVarP(&flagInterval, "interval", "i", flagInterval, "Local check period")
	flags.DurationVarP(&flagNetworkInterval, "network-interval", "n", flagNetworkInterval, "Network check period")
	flags.DurationVar(&flagTimeout, "timeout", flagTimeout, "Per-invocation tool timeout")
	flags.BoolVar(&flagNoZeroOutput, "no-zero-output", false, "Show empty text instead of 0 when up to date")
	flags.BoolVar(&flagNoAUR, "no-aur", false, "Skip the AUR check")

	flags.IntVarP(&flagAlignWidth, "tooltip-align-columns", "l", -1, "Align tooltip columns, optionally with a minimum name width")
	flags.Lookup("tooltip-align-columns").NoOptDefVal = "0"
	flags.StringVar(&flagTooltipFont, "tooltip-font", config.Defaults().TooltipFont, "Pango font family for the aligned tooltip")

	flags.StringVarP(&flagColors, "color-semver-updates", "s", "", "Color tooltip lines by severity (major,minor,patch,pre,other hex list)")
	flags.Lookup("color-semver-updates").NoOptDefVal = "ff0000,00ff00,0000ff,ff00ff,ffffff"
	flags.StringVar(&flagTheme, "theme", "", "TOML severity color theme file")

	flags.StringVar(&flagLogFile, "log-file", "", "Also log to this rotating file")
	flags.StringVar(&flagLogLevel, "log-level", config.Defaults().LogLevel, "Log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.NoColor()
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log, err := logger.Setup(settings.LogFile, settings.LogLevel)
	if err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	defer logger.CloseFile()

	colors, err := resolveColors(settings)
	if err != nil {
		return err
	}

	checkAUR := !settings.NoAUR
	if err := pacman.LookupTools(checkAUR); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pacman.NewExecRunner(settings.Timeout, log)
	client := pacman.NewClient(runner, log)
	emitter := watch.NewStreamEmitter(os.Stdout)

	scheduler := watch.New(watch.Config{
		LocalInterval:   settings.Interval,
		NetworkInterval: settings.NetworkInterval,
		CheckAUR:        checkAUR,
		Render: render.Options{
			SuppressZero: settings.NoZeroOutput,
			AlignColumns: settings.TooltipAlign,
			MinNameWidth: settings.TooltipAlignWidth,
			Font:         settings.TooltipFont,
			Colorize:     settings.ColorUpdates,
			Colors:       colors,
		},
	}, client, emitter, log)

	log.Info("starting",
		"interval", settings.Interval,
		"network_interval", settings.NetworkInterval,
		"aur", checkAUR)

	return scheduler.Run(ctx)
}

// loadSettings resolves defaults, config file and flags, in that order.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	var settings config.Settings
	var err error
	if flagConfig != "" {
		settings, err = config.LoadFrom(flagConfig)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return settings, err
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		settings.Interval = flagInterval
	}
	if flags.Changed("network-interval") {
		settings.NetworkInterval = flagNetworkInterval
	}
	if flags.Changed("timeout") {
		settings.Timeout = flagTimeout
	}
	if flags.Changed("no-zero-output") {
		settings.NoZeroOutput = flagNoZeroOutput
	}
	if flags.Changed("no-aur") {
		settings.NoAUR = flagNoAUR
	}
	if flags.Changed("tooltip-align-columns") {
		settings.TooltipAlign = true
		settings.TooltipAlignWidth = flagAlignWidth
	}
	if flags.Changed("tooltip-font") {
		settings.TooltipFont = flagTooltipFont
	}
	if flags.Changed("color-semver-updates") {
		settings.ColorUpdates = true
		settings.Colors = flagColors
	}
	if flags.Changed("theme") {
		settings.Theme = flagTheme
	}
	if flags.Changed("log-file") {
		settings.LogFile = flagLogFile
	}
	if flags.Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}

	if settings.Interval <= 0 {
		return settings, errors.New("interval must be positive")
	}
	if settings.NetworkInterval <= 0 {
		return settings, errors.New("network interval must be positive")
	}
	return settings, nil
}

// resolveColors builds the severity scheme: theme file first, then the
// command-line list on top of it.
func resolveColors(settings config.Settings) (render.ColorScheme, error) {
	scheme := render.DefaultColors()

	if settings.Theme != "" {
		themed, err := render.LoadTheme(settings.Theme)
		if err != nil {
			return scheme, err
		}
		scheme = themed
	}

	if settings.Colors != "" {
		listed, warnings := render.ParseColorList(settings.Colors, scheme)
		for _, w := range warnings {
			output.PrintWarning("%s", w)
		}
		scheme = listed
	}

	return scheme, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
}
