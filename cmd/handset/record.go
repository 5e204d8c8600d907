package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ayusman/handset/internal/capture"
	"github.com/ayusman/handset/internal/config"
	"github.com/ayusman/handset/internal/detector"
	"github.com/ayusman/handset/internal/display"
	"github.com/ayusman/handset/internal/progress"
	"github.com/ayusman/handset/internal/session"
	"github.com/ayusman/handset/internal/store"
	"github.com/ayusman/handset/internal/tray"
)

// sessionDisplay is a session display that can also be stopped from
// outside the session goroutine.
type sessionDisplay interface {
	session.Display
	Stop()
}

func runRecord(args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	dataRoot := fs.String("data", "", "dataset root directory")
	labels := fs.String("labels", "", "comma separated labels")
	sequences := fs.Int("sequences", 0, "sequences per label")
	frames := fs.Int("frames", 0, "frames per sequence")
	cameraID := fs.Int("camera", -1, "camera device id")
	headless := fs.Bool("headless", false, "record without a preview window")
	withTray := fs.Bool("tray", false, "show a system tray menu (implies -headless)")
	noManifest := fs.Bool("no-manifest", false, "do not record the session in the manifest database")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dataRoot != "" {
		cfg.DataRoot = *dataRoot
	}
	if *labels != "" {
		cfg.Labels = splitLabels(*labels)
	}
	if *sequences > 0 {
		cfg.SequenceCount = *sequences
	}
	if *frames > 0 {
		cfg.FramesPerSequence = *frames
	}
	if *cameraID >= 0 {
		cfg.Camera.ID = *cameraID
	}
	if *headless {
		cfg.Display.Headless = true
	}
	if *withTray {
		cfg.Display.Tray = true
	}
	if *noManifest {
		cfg.ManifestPath = ""
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogFormat, *debug)
	slog.SetDefault(logger)

	if cfg.Display.Tray && !cfg.Display.Headless {
		logger.Info("tray mode runs without a preview window")
		cfg.Display.Headless = true
	}

	cam := capture.NewCameraWithSize(cfg.Camera.ID, cfg.Camera.Width, cfg.Camera.Height)
	cam.SetFPS(cfg.Camera.FPS)

	det, err := detector.NewMediaPipeDetector(cfg.Detector)
	if err != nil {
		return fmt.Errorf("start detector: %w", err)
	}

	deps := session.Deps{
		Source:   cam,
		Detector: det,
		Logger:   logger,
	}

	var disp sessionDisplay
	if cfg.Display.Headless {
		disp = display.NewHeadless()
	} else {
		win := display.NewWindow(cfg.Display.Title, cfg.StopKey())
		deps.Sleep = win.Wait
		disp = win
	}
	deps.Display = disp

	if cfg.ManifestPath != "" {
		st, err := store.New(cfg.ManifestPath)
		if err != nil {
			det.Close()
			disp.Close()
			return fmt.Errorf("open manifest: %w", err)
		}
		defer st.Close()
		deps.Manifest = st
		logger.Debug("manifest opened", "path", st.Path())
	}

	// The bar stays hidden unless the session reports progress.
	sessCfg := cfg.Session()
	deps.Observers = append(deps.Observers, progress.New(os.Stdout, sessCfg))

	var tr *tray.Tray
	if cfg.Display.Tray {
		tr = tray.New()
		deps.Observers = append(deps.Observers, tr)
	}

	sess, err := session.New(sessCfg, deps)
	if err != nil {
		det.Close()
		disp.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		res    session.Result
		runErr error
	)
	if tr != nil {
		tr.OnStop(disp.Stop)
		tr.OnQuit(stop)
		done := make(chan struct{})
		go func() {
			defer close(done)
			res, runErr = sess.Run(ctx)
			tr.Quit()
		}()
		tr.Run()
		// Quit from the menu returns before the session has wound down.
		stop()
		<-done
	} else {
		res, runErr = sess.Run(ctx)
	}

	fmt.Printf("session %s %s: %d frames, %d sequences complete, %d aborted\n",
		res.SessionID, res.Status, res.FramesWritten, res.SequencesCompleted, res.SequencesAborted)
	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func splitLabels(s string) []string {
	var labels []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
