package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
	"github.com/saturnino-fabrica-de-software/facemood/internal/config"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/face"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
	"github.com/saturnino-fabrica-de-software/facemood/internal/presenter"
	"github.com/saturnino-fabrica-de-software/facemood/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	image string
	out   string
	tap   string
	tapX  float64
	tapY  float64
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.StringVar(&opts.image, "image", "", "path of the image to analyze")
	fs.StringVar(&opts.out, "out", "", "write the framed image to this path")
	fs.StringVar(&opts.tap, "tap", "", "source pixel to hit-test, as x,y")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.image == "" {
		return opts, errors.New("-image is required")
	}
	if opts.tap != "" {
		x, y, err := parsePoint(opts.tap)
		if err != nil {
			return opts, err
		}
		opts.tapX, opts.tapY = x, y
	}
	return opts, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the table; logs go to stderr.
	logger := config.NewLoggerTo(cfg.Environment, os.Stderr)

	data, err := os.ReadFile(opts.image)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLogger := audit.NewSlogLogger(logger)
	analyzer, err := face.NewFaceAnalyzer(ctx, cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create face analyzer: %w", err)
	}

	svc := service.NewDetectionService(analyzer, logger).
		WithAuditLogger(auditLogger, cfg.FaceProvider).
		WithTimeout(cfg.DetectionTimeout)

	res, err := svc.Detect(ctx, data).Wait(ctx)
	if err != nil {
		return err
	}

	logger.Debug("detection finished",
		slog.String("request_id", res.Set.RequestID),
		slog.Int("faces", res.Set.Len()),
		slog.Duration("duration", res.Duration),
	)

	if opts.out != "" {
		if err := writeFramed(opts.out, res.Set); err != nil {
			return err
		}
	}

	printFaces(stdout, res.Set)

	if opts.tap != "" {
		tap, err := svc.Tap(presenter.Identity, opts.tapX, opts.tapY)
		if err != nil {
			if errors.Is(err, domain.ErrNoFaceAtPoint) {
				fmt.Fprintf(stdout, "\nno face at %s\n", opts.tap)
				return nil
			}
			return err
		}
		fmt.Fprintf(stdout, "\ntap %s hit %s (%s)\n", opts.tap, tap.Face.ID, tap.Dominant)
	}

	return svc.Shutdown(ctx)
}

func writeFramed(path string, set *domain.FaceSet) error {
	if set.Framed == nil {
		return errors.New("detection produced no framed image")
	}
	out, err := imaging.EncodeJPEG(set.Framed, 90)
	if err != nil {
		return fmt.Errorf("failed to encode framed image: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write framed image: %w", err)
	}
	return nil
}

// printFaces writes one row per face with its rectangle and the eight scores.
func printFaces(w io.Writer, set *domain.FaceSet) {
	if set.Len() == 0 {
		fmt.Fprintln(w, "no faces detected")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"FACE", "RECT"}
	for _, f := range domain.EmotionFields {
		header = append(header, strings.ToUpper(f.Name))
	}
	header = append(header, "DOMINANT")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, rec := range set.Records() {
		r := rec.Rectangle
		cols := []string{rec.ID, fmt.Sprintf("%d,%d %dx%d", r.Left, r.Top, r.Width, r.Height)}
		for _, row := range rec.Emotion.Rows() {
			cols = append(cols, strconv.FormatFloat(row.Value, 'f', 3, 64))
		}
		cols = append(cols, rec.Emotion.Dominant())
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	tw.Flush()
}

func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return x, y, nil
}
