// Command seatwatch is a demo harness for the seat core: it attaches
// one or more evdev device paths, runs them through the core, and
// logs every outbound notification. Grounded on ptt-fix.go's own
// entrypoint (flag.Usage banner, signal.NotifyContext, errgroup
// supervision), minus the cgo/libevdev/xdo dependency that entrypoint
// used only for its X11-forwarding use case.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"log/slog"

	"seatcore.dev/seatcore"
	"seatcore.dev/seatcore/internal/broker"
	"seatcore.dev/seatcore/internal/config"
	"seatcore.dev/seatcore/internal/device"
	"seatcore.dev/seatcore/internal/glossy"
	"seatcore.dev/seatcore/internal/notify"
)

func run(ctx context.Context) error {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %v [-journal] [-config path] /dev/input/by-id/<device>...\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}
	useJournal := flag.Bool("journal", false, "log to the systemd journal instead of the terminal")
	level := flag.Int("level", int(slog.LevelInfo), "minimum log level")
	configPath := flag.String("config", "", "path to config.toml (defaults to the per-user config dir)")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(glossy.Handler{UseJournal: *useJournal, Level: slog.Level(*level)})
	slog.SetDefault(logger)

	cfgPath := *configPath
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	sink := notify.MultiSink{loggingSink{logger: logger}}
	seat := seatcore.NewSeat(broker.Direct{}, sink, logger, cfg)

	for _, path := range paths {
		if _, err := seat.Attach(path); err != nil {
			if errors.Is(err, device.ErrUnhandled) {
				logger.Warn("device has no usable capability, skipping", "path", path)
				continue
			}
			return fmt.Errorf("attach %s: %w", path, err)
		}
	}

	return seat.Run(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Default().Error("seatwatch exited", "error", err)
		os.Exit(1)
	}
}
