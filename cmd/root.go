// cmd/root.go
package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sydevs-sim/sydevs-sim/demo"
	"github.com/sydevs-sim/sydevs-sim/quantity"
	"github.com/sydevs-sim/sydevs-sim/systems"
)

var (
	runDuration time.Duration
	runSeed     int64
	runRate     float64
	runLogLevel string
	runConfig   string
)

var rootCmd = &cobra.Command{
	Use:   "sydevs-sim",
	Short: "Discrete-event simulation kernel demo",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the source/sink demo system",
	Run:   runDemo,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := defaultDemoConfig()
	defaultDuration, err := defaults.duration()
	if err != nil {
		logrus.WithError(err).Fatal("invalid built-in default duration")
	}

	runCmd.Flags().DurationVar(&runDuration, "duration", defaultDuration, "simulated run length (e.g. 5m, 30s)")
	runCmd.Flags().Int64Var(&runSeed, "seed", defaults.Seed, "random seed")
	runCmd.Flags().Float64Var(&runRate, "rate", defaults.Rate, "source arrival rate, in messages per second")
	runCmd.Flags().StringVar(&runLogLevel, "log", defaults.LogLevel, "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runConfig, "config", "", "path to a YAML file overriding the defaults above")

	rootCmd.AddCommand(runCmd)
}

func runDemo(cmd *cobra.Command, args []string) {
	cfg := defaultDemoConfig()
	if runConfig != "" {
		if err := cfg.mergeFile(runConfig); err != nil {
			logrus.WithError(err).Fatal("failed to load config")
		}
	}
	if cmd.Flags().Changed("duration") {
		cfg.DurationText = runDuration.String()
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = runRate
	}
	if cmd.Flags().Changed("log") {
		cfg.LogLevel = runLogLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", cfg.LogLevel)
	}
	log := logrus.New()
	log.SetLevel(level)

	dur, err := cfg.duration()
	if err != nil {
		log.WithError(err).Fatal("invalid duration")
	}
	if cfg.Rate <= 0 {
		log.Fatal("rate must be positive")
	}
	meanInterval := quantity.Milliseconds(int64(1000.0 / cfg.Rate)).FixedAt(quantity.Milli)

	var sys *demo.System
	sim := systems.NewTotalDurationSimulation(
		quantity.Milliseconds(dur.Milliseconds()).FixedAt(quantity.Milli),
		cfg.Seed,
		os.Stdout,
		log,
		func(ctx *systems.NodeContext) systems.SystemNode {
			sys = demo.NewSystem("system", ctx, meanInterval)
			return sys
		},
	)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("simulation aborted: %v", r)
			os.Exit(1)
		}
	}()

	events := sim.ProcessRemainingEvents()

	log.WithFields(logrus.Fields{
		"events":    events,
		"arrivals":  sys.Source.EmittedCount(),
		"received":  sys.Sink.ReceivedCount(),
		"wall_time": sim.EventTimer().Total(),
	}).Info("simulation complete")
}
