// Command rstracer runs the host tracing pipeline: it samples processes,
// open files, and network traffic, stages them through the bronze/silver/gold
// DuckDB schema, and periodically correlates and exports the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rstracer/rstracer/internal/adapter/openfiles"
	"github.com/rstracer/rstracer/internal/adapter/packet"
	"github.com/rstracer/rstracer/internal/adapter/process"
	"github.com/rstracer/rstracer/internal/adapter/static"
	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/correlate"
	"github.com/rstracer/rstracer/internal/encode"
	"github.com/rstracer/rstracer/internal/executor"
	"github.com/rstracer/rstracer/internal/metrics"
	"github.com/rstracer/rstracer/internal/model"
	"github.com/rstracer/rstracer/internal/persist"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/rstracer/rstracer/internal/schedule"
	"github.com/rstracer/rstracer/internal/schema"
	"github.com/rstracer/rstracer/internal/sqlqueue"
	"github.com/rstracer/rstracer/utils"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rstracer",
		Short: "Host-local process, open-file, and network tracing pipeline",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "rstracer.toml", "path to rstracer.toml")
	root.AddCommand(newRunCmd(), newSchemaCmd(), newExportCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion and correlation pipeline until signalled to stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(context.Background())
		},
	}
}

func newSchemaCmd() *cobra.Command {
	schemaCmd := &cobra.Command{Use: "schema", Short: "Inspect the bronze/silver/gold DDL"}
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the full CREATE TABLE/SEQUENCE text",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(schema.CreateSchemaRequest())
			return nil
		},
	})
	return schemaCmd
}

func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{Use: "export", Short: "Trigger a gold-layer export outside the schedule"}
	exportCmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Open the configured on-disk database and export gold_* tables once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportNow(context.Background())
		},
	})
	return exportCmd
}

func run(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("rstracer: load config: %w", err)
	}

	log, logCloser, err := rlog.FromConfig(cfg.Logger)
	if err != nil {
		return fmt.Errorf("rstracer: init logger: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	log = log.WithRunID(uuid.NewString())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		sig := utils.WaitForQuit()
		log.Info().Str("signal", sig.String()).Msg("shutdown requested")
		cancel()
	}()

	diskPath := cfg.Path
	if cfg.InMemory {
		diskPath = ""
	}

	exec, err := executor.Open(":memory:")
	if err != nil {
		return fmt.Errorf("rstracer: open database: %w", err)
	}
	exec = exec.WithLogger(log)
	defer exec.Close()

	bridge, err := persist.Open(ctx, exec.DB(), diskPath, log.WithComponent("persist"))
	if err != nil {
		return fmt.Errorf("rstracer: create schema: %w", err)
	}

	queue := sqlqueue.New(cfg.Request.ChannelSize)
	defer queue.Close()

	eng := schedule.New(cfg, log.WithComponent("schedule"))

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error { return exec.Run(gctx, queue, cfg.Request.ConsumerBatchSize) })
	group.Go(func() error { return eng.Run(gctx, queue) })
	group.Go(func() error { return runPersistFlush(gctx, cfg, bridge, log.WithComponent("persist")) })
	group.Go(func() error { return runProcessAdapter(gctx, cfg.PS, queue, log.WithComponent("process")) })
	group.Go(func() error {
		return runOpenFilesAdapter(gctx, cfg.Lsof.Regular, keepAllFiles, queue, log.WithComponent("lsof.regular"))
	})
	group.Go(func() error {
		return runOpenFilesAdapter(gctx, cfg.Lsof.Network, keepNetworkSockets, queue, log.WithComponent("lsof.network"))
	})
	group.Go(func() error { return runPacketAdapter(gctx, queue, log.WithComponent("packet")) })
	group.Go(func() error { return runStaticAdapter(gctx, cfg, queue, log.WithComponent("static")) })

	if cfg.Metrics.Listen != "" {
		group.Go(func() error { return metrics.Serve(gctx, cfg.Metrics.Listen) })
	}

	runErr := group.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	for _, layer := range []string{"bronze_", "silver_", "gold_"} {
		if ferr := bridge.FlushLayer(shutdownCtx, layer); ferr != nil {
			log.Error().Err(ferr).Str("layer", layer).Msg("final layer flush failed")
		}
	}
	if cerr := bridge.Checkpoint(shutdownCtx); cerr != nil {
		log.Error().Err(cerr).Msg("final checkpoint failed")
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func exportNow(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("rstracer: load config: %w", err)
	}
	if cfg.Path == "" {
		return fmt.Errorf("rstracer: export now requires a non-empty path in rstracer.toml")
	}

	log := rlog.New(rlog.Options{Level: cfg.Logger.Level})

	exec, err := executor.Open(":memory:")
	if err != nil {
		return fmt.Errorf("rstracer: open database: %w", err)
	}
	defer exec.Close()

	if _, err := persist.Open(ctx, exec.DB(), cfg.Path, log); err != nil {
		return fmt.Errorf("rstracer: attach %s: %w", cfg.Path, err)
	}
	if _, err := exec.DB().ExecContext(ctx, "USE file;"); err != nil {
		return fmt.Errorf("rstracer: switch to file catalog: %w", err)
	}

	stmt := correlate.ExportRequest(cfg.Export.Directory, cfg.Export.Format)
	if stmt == "" {
		fmt.Println("no gold_* tables to export")
		return nil
	}
	if err := os.MkdirAll(cfg.Export.Directory, 0o755); err != nil {
		return fmt.Errorf("rstracer: create export directory: %w", err)
	}
	if _, err := exec.DB().ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("rstracer: export: %w", err)
	}
	fmt.Printf("exported gold tables to %s\n", cfg.Export.Directory)
	return nil
}

// runPersistFlush periodically replicates bronze/silver/gold from the live
// memory catalog into the durable file catalog, so a crash between two
// flushes loses at most one export interval's worth of writes. It is a
// no-op for in-memory-only runs, where there is no file catalog to flush to.
func runPersistFlush(ctx context.Context, cfg config.Config, bridge *persist.Bridge, log rlog.Logger) error {
	if cfg.InMemory || cfg.Path == "" {
		return nil
	}
	freq := time.Duration(cfg.Schedule.Export) * time.Second
	if freq <= 0 {
		freq = time.Minute
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, layer := range []string{"bronze_", "silver_", "gold_"} {
				if err := bridge.FlushLayer(ctx, layer); err != nil {
					log.Warn().Err(err).Str("layer", layer).Msg("periodic flush failed")
				}
			}
			if err := bridge.Checkpoint(ctx); err != nil {
				log.Warn().Err(err).Msg("periodic checkpoint failed")
			}
		}
	}
}

func runProcessAdapter(ctx context.Context, cfg config.Channel, queue *sqlqueue.Queue, log rlog.Logger) error {
	adapter := process.New()
	ticker := time.NewTicker(producerInterval(cfg.ProducerFrequency))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rows, err := adapter.Collect(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("process collect failed")
				continue
			}
			if len(rows) == 0 {
				continue
			}
			if err := sendOrStop(ctx, queue, encode.Processes(rows)); err != nil {
				return err
			}
		}
	}
}

func keepAllFiles(model.OpenFile) bool { return true }

func keepNetworkSockets(f model.OpenFile) bool {
	switch strings.ToUpper(f.Type) {
	case "IPV4", "IPV6":
		return true
	default:
		return false
	}
}

func runOpenFilesAdapter(ctx context.Context, cfg config.Channel, keep func(model.OpenFile) bool, queue *sqlqueue.Queue, log rlog.Logger) error {
	adapter := openfiles.New()
	ticker := time.NewTicker(producerInterval(cfg.ProducerFrequency))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rows, err := adapter.Collect(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("lsof collect failed")
				continue
			}
			filtered := rows[:0]
			for _, r := range rows {
				if keep(r) {
					filtered = append(filtered, r)
				}
			}
			if len(filtered) == 0 {
				continue
			}
			if err := sendOrStop(ctx, queue, encode.OpenFiles(filtered)); err != nil {
				return err
			}
		}
	}
}

func runPacketAdapter(ctx context.Context, queue *sqlqueue.Queue, log rlog.Logger) error {
	device, err := defaultCaptureDevice()
	if err != nil {
		return fmt.Errorf("rstracer: select capture device: %w", err)
	}
	adapter, err := packet.Open(packet.Options{Device: device})
	if err != nil {
		return fmt.Errorf("rstracer: open packet capture on %s: %w", device, err)
	}
	defer adapter.Close()
	log.Info().Str("interface", device).Msg("packet capture started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		captures, errs := adapter.Collect(ctx)
		for _, derr := range errs {
			log.Warn().Err(derr).Msg("packet decode failed")
		}
		for _, cap := range captures {
			if err := sendOrStop(ctx, queue, encode.Capture(cap)); err != nil {
				return err
			}
		}
	}
}

// defaultCaptureDevice picks the first non-loopback device libpcap reports,
// falling back to the first device of any kind, mirroring networkLog's
// getSourceIP preference for a real address over the loopback interface.
func defaultCaptureDevice() (string, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return "", fmt.Errorf("pcap.FindAllDevs: %w", err)
	}
	if len(devices) == 0 {
		return "", errors.New("no capture devices found")
	}
	for _, dev := range devices {
		for _, addr := range dev.Addresses {
			if addr.IP != nil && !addr.IP.IsLoopback() {
				return dev.Name, nil
			}
		}
	}
	return devices[0].Name, nil
}

// runStaticAdapter re-reads /etc/hosts, /etc/services, the user database,
// and the local interface address list on the file schedule's cadence:
// hosts, services and users are upserted into gold_file_host/service/user,
// interface addresses into bronze_network_interface_address, so
// dimension/file refresh always joins against a fresh snapshot.
func runStaticAdapter(ctx context.Context, cfg config.Config, queue *sqlqueue.Queue, log rlog.Logger) error {
	freq := time.Duration(cfg.Schedule.File) * time.Second
	if freq <= 0 {
		freq = time.Minute
	}

	if err := collectStatic(ctx, queue, log); err != nil {
		return err
	}

	ticker := time.NewTicker(freq)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := collectStatic(ctx, queue, log); err != nil {
				return err
			}
		}
	}
}

func collectStatic(ctx context.Context, queue *sqlqueue.Queue, log rlog.Logger) error {
	hosts, err := static.ReadHosts("")
	if err != nil {
		log.Warn().Err(err).Msg("read hosts failed")
	}
	for _, h := range hosts {
		if err := sendOrStop(ctx, queue, encode.Host(h)); err != nil {
			return err
		}
	}

	services, err := static.ReadServices("")
	if err != nil {
		log.Warn().Err(err).Msg("read services failed")
	}
	for _, s := range services {
		if err := sendOrStop(ctx, queue, encode.Service(s)); err != nil {
			return err
		}
	}

	users, err := static.ReadUsers("")
	if err != nil {
		log.Warn().Err(err).Msg("read users failed")
	}
	for _, u := range users {
		if err := sendOrStop(ctx, queue, encode.User(u)); err != nil {
			return err
		}
	}

	addrs, err := static.ReadInterfaceAddresses()
	if err != nil {
		log.Warn().Err(err).Msg("read interface addresses failed")
	} else if len(addrs) > 0 {
		if err := sendOrStop(ctx, queue, encode.InterfaceAddresses(addrs)); err != nil {
			return err
		}
	}
	return nil
}

func producerInterval(frequencySeconds uint64) time.Duration {
	if frequencySeconds == 0 {
		return time.Second
	}
	return time.Duration(frequencySeconds) * time.Second
}

// sendOrStop enqueues sql, translating context cancellation and a closed
// queue into a clean stop rather than an error the errgroup would surface.
func sendOrStop(ctx context.Context, queue *sqlqueue.Queue, sql string) error {
	if sql == "" {
		return nil
	}
	err := queue.Send(ctx, sql)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, sqlqueue.ErrReceiverClosed):
		return nil
	default:
		return err
	}
}
