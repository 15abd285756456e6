package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pmml-exporter/internal/cfg"
	"pmml-exporter/internal/export"
	"pmml-exporter/internal/model"
	"pmml-exporter/internal/publish"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type flags struct {
	model       string
	scaler      string
	out         string
	version     string
	features    string
	targets     string
	targetName  string
	name        string
	description string
	copyright   string
	logLevel    string
	publish     bool
}

func main() {
	// A missing .env is fine; the environment may be set already.
	_ = godotenv.Load()

	var f flags
	flag.StringVar(&f.model, "model", "", "Path to the fitted model dump (JSON)")
	flag.StringVar(&f.scaler, "scaler", "", "Path to the fitted scaler dump (JSON), optional")
	flag.StringVar(&f.out, "out", "", "Output PMML file (default: stdout)")
	flag.StringVar(&f.version, "version", "", "PMML version: 4.1, 4.2, 4.2.1 or 4.3")
	flag.StringVar(&f.features, "features", "", "Comma-separated feature names")
	flag.StringVar(&f.targets, "targets", "", "Comma-separated target values")
	flag.StringVar(&f.targetName, "target-name", "", "Target field name")
	flag.StringVar(&f.name, "name", "", "Model name")
	flag.StringVar(&f.description, "description", "", "Header description")
	flag.StringVar(&f.copyright, "copyright", "", "Header copyright")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.publish, "publish", false, "Deploy the document to SCORING_URL")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	level := settings.LogLevel
	if f.logLevel != "" {
		level = f.logLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if err := run(context.Background(), f, settings, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}
}

// run performs one export. The document goes to f.out, or to stdout when
// no output file is given.
func run(ctx context.Context, f flags, settings cfg.Settings, stdout io.Writer) error {
	if f.model == "" {
		return fmt.Errorf("-model is required")
	}
	if f.publish && settings.ScoringURL == "" {
		return fmt.Errorf("-publish requires SCORING_URL")
	}

	est, err := model.LoadFile(f.model)
	if err != nil {
		return err
	}
	var tr model.Transformer
	if f.scaler != "" {
		if tr, err = model.LoadTransformerFile(f.scaler); err != nil {
			return err
		}
	}

	opts := options(f, settings)
	res, err := export.New(nil, nil).Export(est, tr, opts)
	if err != nil {
		return err
	}
	if opts.File == "" {
		if err := res.Document.Encode(stdout); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
	} else {
		log.Info().Str("file", opts.File).Msg("PMML document written")
	}

	if f.publish {
		doc, err := res.Bytes()
		if err != nil {
			return err
		}
		modelID := opts.ModelName
		if modelID == "" {
			modelID = strings.TrimSuffix(filepath.Base(f.model), filepath.Ext(f.model))
		}
		ctx, cancel := context.WithTimeout(ctx, settings.RESTTimeout+5*time.Second)
		defer cancel()
		if _, err := publish.NewClient(settings.ScoringURL, settings.RESTTimeout).Deploy(ctx, modelID, doc); err != nil {
			return err
		}
	}
	return nil
}

// options merges command line values over configuration values.
func options(f flags, settings cfg.Settings) export.Options {
	opts := export.Options{
		Version:      settings.PMMLVersion,
		FeatureNames: settings.FeatureNames,
		TargetName:   settings.TargetName,
		TargetValues: settings.TargetValues,
		ModelName:    settings.ModelName,
		Description:  settings.Description,
		Copyright:    settings.Copyright,
		File:         f.out,
	}
	if f.version != "" {
		opts.Version = f.version
	}
	if f.features != "" {
		opts.FeatureNames = splitList(f.features)
	}
	if f.targets != "" {
		opts.TargetValues = splitList(f.targets)
	}
	if f.targetName != "" {
		opts.TargetName = f.targetName
	}
	if f.name != "" {
		opts.ModelName = f.name
	}
	if f.description != "" {
		opts.Description = f.description
	}
	if f.copyright != "" {
		opts.Copyright = f.copyright
	}
	return opts
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
