package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"

	apppkg "github.com/kk-code-lab/rview/internal/app"
	"github.com/kk-code-lab/rview/internal/config"
	"github.com/kk-code-lab/rview/internal/encdetect"
	"github.com/kk-code-lab/rview/internal/host"
	"github.com/kk-code-lab/rview/internal/logutil"
	"github.com/kk-code-lab/rview/internal/session"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
)

func build() string {
	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
		}
	}
	return v
}

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Encoding   string
	Mode       string
	LinesPer   int
	Cover      bool
	ChunkSize  int
}

func main() {
	// UTF-8 fallback keeps non-Latin text readable on odd locales.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	var f flags

	cmd := &cli.Command{
		Name:      "rview",
		Usage:     "Terminal document viewer with scroll and page modes",
		UsageText: "rview [options] FILE\n   cat FILE | rview [options] -",
		Description: `rview opens a text document, detects its encoding (UTF-8, UTF-16,
EUC-KR), and presents it either as a continuous scroll or as fixed-size
pages. Large documents are windowed in chunks so only the visible part
is materialized.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RVIEW_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("RVIEW_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (logging is off without one)",
				Sources:     cli.EnvVars("RVIEW_LOG_FILE"),
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "encoding",
				Aliases:     []string{"e"},
				Usage:       "force an encoding instead of detecting (utf-8, utf-16le, utf-16be, euc-kr, cp949, iso-8859-1)",
				Destination: &f.Encoding,
			},
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "initial presentation mode (scroll or page)",
				Value:       "scroll",
				Destination: &f.Mode,
			},
			&cli.IntFlag{
				Name:        "lines-per-page",
				Usage:       "lines on each page in page mode",
				Destination: &f.LinesPer,
			},
			&cli.BoolFlag{
				Name:        "cover",
				Usage:       "prepend a cover page in page mode",
				Destination: &f.Cover,
			},
			&cli.IntFlag{
				Name:        "chunk-size",
				Usage:       "lines per window chunk for large documents",
				Destination: &f.ChunkSize,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one file argument, got %d", c.Args().Len())
			}
			return run(ctx, f, c.Args().First())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rview: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, path string) error {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return err
	}
	if f.LinesPer > 0 {
		cfg.LinesPerPage = f.LinesPer
	}
	if f.Cover {
		cfg.IncludeCover = true
	}
	if f.ChunkSize > 0 {
		cfg.ChunkSize = f.ChunkSize
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.LogFile = f.LogFile
	}

	logger, logCloser, err := logutil.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer logCloser()

	var picker host.Picker = host.LocalPicker{}
	if path == "-" {
		picker = host.ReaderPicker{Name: "(stdin)", R: os.Stdin}
	}
	file, err := picker.Pick(ctx, path)
	if err != nil {
		return err
	}

	sess := session.New(session.Options{
		Window:             cfg.WindowOptions(),
		Paginate:           cfg.PaginateOptions(),
		LargeFileThreshold: cfg.LargeFileThreshold,
		Logger:             logger,
	})
	if err := sess.Open(ctx, file); err != nil {
		return fmt.Errorf("open %s: %w", file.Meta.Name, err)
	}

	if f.Encoding != "" {
		enc, ok := encdetect.Parse(f.Encoding)
		if !ok {
			return fmt.Errorf("unknown encoding %q", f.Encoding)
		}
		if err := sess.ChangeEncoding(ctx, enc); err != nil {
			return fmt.Errorf("decode as %s: %w", enc, err)
		}
	}

	switch f.Mode {
	case "", "scroll":
	case "page":
		sess.SetMode(session.ModePage)
	default:
		return fmt.Errorf("unknown mode %q", f.Mode)
	}

	screen, err := apppkg.NewScreen()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	logger.Info().Str("file", file.Meta.Name).Int64("size", file.Meta.Size).Msg("viewer started")
	return apppkg.New(screen, sess, logger).Run(ctx)
}
