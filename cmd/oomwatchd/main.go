//go:build linux

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oomwatch/oomwatchd/pkg/cliconfig"
	"github.com/oomwatch/oomwatchd/pkg/control"
	"github.com/oomwatch/oomwatchd/pkg/kill"
	"github.com/oomwatch/oomwatchd/pkg/meminfo"
	"github.com/oomwatch/oomwatchd/pkg/metrics"
	"github.com/oomwatch/oomwatchd/pkg/notify"
	"github.com/oomwatch/oomwatchd/pkg/oomlog"
	"github.com/oomwatch/oomwatchd/pkg/procfs"
	"github.com/oomwatch/oomwatchd/pkg/runinfo"
	"github.com/oomwatch/oomwatchd/pkg/statusfile"
	"github.com/oomwatch/oomwatchd/pkg/victim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	var cli cliconfig.CLI

	root := &cobra.Command{
		Use:   "oomwatchd",
		Short: "Early OOM responder for Linux",
		Long: `oomwatchd watches /proc/meminfo and kills the best-scoring victim
process before the kernel OOM killer has to step in, using the same
percentage/kill-percentage threshold model as the classic
userspace early-OOM daemons it succeeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cli)
		},
	}
	cliconfig.Register(root, &cli)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliconfig.ExitBadArgument)
	}
}

func run(cli cliconfig.CLI) error {
	if cli.Version {
		fmt.Println("oomwatchd " + version)
		return nil
	}

	var file cliconfig.FileConfig
	if cli.ConfigPath != "" {
		var err error
		file, err = cliconfig.ParseConfigFile(cli.ConfigPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(cliconfig.ExitCannotOpenConfig)
		}
	}

	procReader := procfs.Default()
	memReader := meminfo.Default()

	startupSnap, err := memReader.Read()
	if err != nil {
		fmt.Fprintln(os.Stderr, "meminfo:", err)
		os.Exit(cliconfig.ExitCannotOpenProc)
	}

	merged, err := cliconfig.Merge(cli, file, startupSnap.MemTotalKiB, startupSnap.SwapTotalKiB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *cliconfig.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(cliconfig.ExitBadArgument)
	}

	var logger *zap.Logger
	if merged.LogJSON {
		logger, err = oomlog.NewJSON(merged.Debug)
	} else {
		logger, err = oomlog.New(merged.Debug)
	}
	if err != nil {
		return err
	}
	defer logger.Sync()

	info := runinfo.New()
	logger = logger.With(zap.String("instance_id", info.InstanceID))

	for _, w := range merged.Warnings {
		logger.Warn(w)
	}

	logger.Info("starting",
		zap.Int("pid", info.PID),
		zap.Float64("mem_term_pct", merged.Thresholds.MemTermPct),
		zap.Float64("mem_kill_pct", merged.Thresholds.MemKillPct),
		zap.Float64("mem_high_pct", merged.Thresholds.MemHighPct),
	)

	if cli.ConfigPath != "" {
		watcher, err := cliconfig.WatchConfigFile(cli.ConfigPath, func(name string) {
			logger.Warn("config file changed on disk, restart to pick it up", zap.String("path", name))
		})
		if err != nil {
			logger.Warn("could not watch config file", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	if merged.RaisePrio {
		if err := syscall.Setpriority(syscall.PRIO_PROCESS, 0, -20); err != nil {
			logger.Warn("failed to raise scheduling priority", zap.Error(err))
		}
		if err := os.WriteFile(fmt.Sprintf("/proc/%d/oom_score_adj", info.PID), []byte("-100"), 0o644); err != nil {
			logger.Warn("failed to lower own oom_score_adj", zap.Error(err))
		}
	}

	if !procReader.Exists(info.PID) {
		fmt.Fprintln(os.Stderr, "cannot find our own PID under /proc")
		os.Exit(cliconfig.ExitCannotEnterProc)
	}

	reaper := notify.StartReaper()
	defer reaper.Stop()

	sugar := logger.Sugar()

	selOpts := victim.Options{
		IgnoreOOMScoreAdj: merged.Thresholds.IgnoreOOMScoreAdj,
		Regexes:           merged.Thresholds.Regexes,
		SelfPID:           info.PID,
		Logger:            sugar,
	}

	signaler := kill.UnixSignaler{}

	loop := &control.Loop{
		Mem:        memReader,
		Selector:   &selOpts,
		ProcSource: procReader,
		Names:      procReader,
		Escalator: &kill.Escalator{
			Signaler:    signaler,
			Alive:       procReader,
			Mem:         memReader,
			MemKillPct:  merged.Thresholds.MemKillPct,
			SwapKillPct: merged.Thresholds.SwapKillPct,
		},
		Emergency: &kill.Emergency{
			Signaler: signaler,
			Names:    procReader,
			Mem:      memReader,
			HighPct:  merged.Thresholds.MemHighPct,
		},
		Status:     statusfile.New(merged.StatusFilePath),
		Logger:     sugar,
		Thresholds: merged.Thresholds,
	}
	if merged.Notify {
		loop.Notify = notify.Notifier{}
	}

	if merged.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return err
		}
		srv := metrics.NewServer(merged.MetricsAddr, reg)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		loop.Metrics = metrics.Sink{}
	}

	if err := loop.SelfTest(); err != nil {
		logger.Error("startup self-test failed", zap.Error(err))
		os.Exit(cliconfig.ExitCannotOpenProc)
	}

	if merged.SelfTest {
		logger.Info("self-test ok")
		return nil
	}

	installSIGPIPEHandler(logger)

	return loop.Run()
}

func installSIGPIPEHandler(logger *zap.Logger) {
	// SIGPIPE on our own output stream is fatal by design: the daemon
	// has nowhere useful to keep logging once its stderr is gone.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGPIPE)
	go func() {
		<-sigCh
		logger.Error("SIGPIPE received, aborting")
		os.Exit(cliconfig.ExitSIGPIPE)
	}()
}
