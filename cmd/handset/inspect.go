package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ayusman/handset/internal/dataset"
	"github.com/ayusman/handset/internal/store"
)

// labelSummary is the on-disk state of one label.
type labelSummary struct {
	Label      string
	Sequences  int
	Frames     int
	Incomplete []int
}

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	dataRoot := fs.String("data", "", "dataset root directory")
	frames := fs.Int("frames", 0, "expected frames per sequence")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dataRoot != "" {
		cfg.DataRoot = *dataRoot
	}
	if *frames > 0 {
		cfg.FramesPerSequence = *frames
	}

	summaries, err := summarize(dataset.New(cfg.DataRoot), cfg.FramesPerSequence)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "dataset %s\n", cfg.DataRoot)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tSEQUENCES\tFRAMES\tINCOMPLETE")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Label, s.Sequences, s.Frames, formatInts(s.Incomplete))
	}
	return w.Flush()
}

// summarize counts the sequences and frames stored for every label. A
// sequence with fewer than expected frames is reported as incomplete.
func summarize(layout *dataset.Layout, expected int) ([]labelSummary, error) {
	labels, err := layout.Labels()
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}

	summaries := make([]labelSummary, 0, len(labels))
	for _, label := range labels {
		seqs, err := layout.Sequences(label)
		if err != nil {
			return nil, fmt.Errorf("list sequences of %q: %w", label, err)
		}

		s := labelSummary{Label: label, Sequences: len(seqs)}
		for _, seq := range seqs {
			frames, err := layout.SequenceFrames(label, seq)
			if err != nil {
				return nil, fmt.Errorf("list frames of %q/%d: %w", label, seq, err)
			}
			s.Frames += len(frames)
			if len(frames) < expected {
				s.Incomplete = append(s.Incomplete, seq)
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func runSessions(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	dbPath := fs.String("db", "", "manifest database path")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.ManifestPath = *dbPath
	}
	if cfg.ManifestPath == "" {
		return errors.New("no manifest database configured")
	}

	st, err := store.New(cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer st.Close()

	sessions, err := st.Sessions().List()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	counts, err := st.Frames().CountByLabel()
	if err != nil {
		return fmt.Errorf("count frames: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tFRAMES\tLABELS\tERROR")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.StartedAt.Local().Format(time.DateTime), s.Status, s.FramesWritten,
			strings.Join(s.Labels, ","), s.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(counts) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATA ROOT\tLABEL\tSEQUENCES\tFRAMES")
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.DataRoot, c.Label, c.Sequences, c.Frames)
		}
		return w.Flush()
	}
	return nil
}

func formatInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
