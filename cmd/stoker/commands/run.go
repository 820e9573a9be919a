// Package commands wires the stoker CLI surface: the run daemon plus
// config and version utilities.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberworks/stoker/config"
	"github.com/emberworks/stoker/engine"
	"github.com/emberworks/stoker/logger"
)

// RunCmd starts the scheduler daemon in the foreground.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the scheduler daemon",
	Long: `Start the scheduler daemon in foreground mode.

The daemon will:
- Start the worker pool polling for ready jobs
- Retry failed executions with exponential backoff
- Record results in a bounded history
- Run until interrupted (Ctrl+C) with graceful shutdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		engineCfg := engine.Config{
			Workers:         cfg.Engine.Workers,
			PollInterval:    cfg.Engine.PollInterval(),
			MaxHistory:      cfg.Engine.MaxHistory,
			ShutdownTimeout: cfg.Engine.ShutdownTimeout(),
			ClaimsPerMinute: cfg.Engine.ClaimsPerMinute,
			Retry: engine.RetryPolicy{
				MaxRetries:    cfg.Engine.MaxRetries,
				BackoffFactor: cfg.Engine.BackoffFactor,
			},
		}
		if cmd.Flags().Changed("workers") {
			engineCfg.Workers, _ = cmd.Flags().GetInt("workers")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		scheduler := engine.NewScheduler(ctx, engineCfg)
		monitor := engine.NewMonitor(scheduler)

		demo, _ := cmd.Flags().GetBool("demo")
		if demo {
			registerDemoJobs(scheduler)
		}

		scheduler.Start()

		fmt.Println("Stoker daemon started")
		fmt.Printf("  Workers: %d\n", engineCfg.Workers)
		fmt.Printf("  Poll interval: %v\n", engineCfg.PollInterval)
		fmt.Printf("  Max history: %d\n", engineCfg.MaxHistory)
		if engineCfg.ClaimsPerMinute > 0 {
			fmt.Printf("  Claim limit: %d/min\n", engineCfg.ClaimsPerMinute)
		}
		fmt.Println("\nPress Ctrl+C for graceful shutdown")

		// Watch the config file if one was found; most knobs need a
		// restart, so a reload just reports what changed.
		if path := config.Path(); path != "" {
			watcher, err := config.NewWatcher(path)
			if err != nil {
				logger.Logger.Warnw("Config watcher unavailable", "error", err)
			} else {
				watcher.OnReload(func(newCfg *config.Config) error {
					logger.Logger.Infow("Config reloaded, restart to apply engine changes",
						"workers", newCfg.Engine.Workers,
						"poll_interval_seconds", newCfg.Engine.PollIntervalSeconds)
					return nil
				})
				watcher.Start()
				defer watcher.Stop()
			}
		}

		metricsInterval, _ := cmd.Flags().GetDuration("metrics-interval")
		if metricsInterval > 0 {
			go reportMetrics(ctx, monitor, metricsInterval)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\nShutting down...")
		scheduler.Stop()
		cancel()

		metrics := monitor.CollectMetrics()
		fmt.Printf("Stoker daemon stopped (%d executions, %.1f%% success)\n",
			metrics.TotalExecutions, metrics.SuccessRate)
		return nil
	},
}

// reportMetrics periodically logs job and host metrics.
func reportMetrics(ctx context.Context, monitor *engine.Monitor, interval time.Duration) {
	log := logger.Logger.Named("metrics")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := monitor.CollectMetrics()
			fields := []any{
				"jobs_total", m.TotalJobs,
				"jobs_pending", m.PendingJobs,
				"jobs_running", m.RunningJobs,
				"executions", m.TotalExecutions,
				"success_rate", m.SuccessRate,
				"avg_duration", m.AvgDuration,
			}
			if sys, err := engine.CollectSystemMetrics(); err == nil {
				fields = append(fields,
					"cpu_percent", sys.CPUPercent,
					"mem_percent", sys.MemUsedPercent,
					"load1", sys.Load1)
			}
			log.Infow("Scheduler metrics", fields...)
		}
	}
}

// registerDemoJobs adds a recurring heartbeat and a host snapshot job so a
// fresh daemon has something to execute.
func registerDemoJobs(scheduler *engine.Scheduler) {
	heartbeat := engine.NewJob("heartbeat", engine.JobKindMaintenance,
		func(args ...any) (map[string]any, error) {
			return map[string]any{"beat": time.Now().Format(time.RFC3339)}, nil
		})
	heartbeat.Recurrence = engine.RecurrenceSpec{
		Kind:     engine.RecurrenceCustom,
		Interval: 1,
		Every:    10 * time.Second,
	}
	scheduler.AddJob(heartbeat)

	hostSnapshot := engine.NewJob("host-snapshot", engine.JobKindAnalytics,
		func(args ...any) (map[string]any, error) {
			sys, err := engine.CollectSystemMetrics()
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"cpu_percent": sys.CPUPercent,
				"mem_percent": sys.MemUsedPercent,
			}, nil
		})
	hostSnapshot.Recurrence = engine.RecurrenceSpec{
		Kind:     engine.RecurrenceCustom,
		Interval: 1,
		Every:    30 * time.Second,
	}
	scheduler.AddJob(hostSnapshot)

	logger.Logger.Infow("Demo jobs registered",
		"jobs", []string{heartbeat.Name, hostSnapshot.Name})
}

func init() {
	RunCmd.Flags().Int("workers", 0, "Number of concurrent workers (overrides config)")
	RunCmd.Flags().Bool("demo", false, "Register demo jobs (heartbeat, host snapshot)")
	RunCmd.Flags().Duration("metrics-interval", time.Minute, "How often to log scheduler metrics (0 disables)")
}
