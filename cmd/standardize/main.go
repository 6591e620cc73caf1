package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"phone_standardizer/internal/adapters/storage"
	"phone_standardizer/internal/batch"
	"phone_standardizer/internal/contacts"
	"phone_standardizer/platform/config"
	"phone_standardizer/platform/logger"
	"phone_standardizer/platform/phone"
	"phone_standardizer/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, logFile, err := newLogger(cfg)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	defer logFile.Close()

	if err := run(cfg, log); err != nil {
		log.Error("batch aborted", "error", err)
		fmt.Fprintf(os.Stderr, "batch aborted: %v\n", err)
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if _, err := contacts.NewDecoder(cfg.GetInputEncoding()); err != nil {
		return err
	}

	normalizer, err := newNormalizer(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := batch.New(cfg, normalizer, log)
	driver.SetProgress(func(in string) {
		fmt.Printf("Processing file: %s\n", in)
	})
	if cfg.IsMinIOEnabled() {
		archive, err := storage.NewMinIOService(cfg)
		if err != nil {
			return err
		}
		if err := archive.EnsureBucketExists(ctx); err != nil {
			return err
		}
		driver.SetArchiver(archive)
		log.Info("archiving outputs", "endpoint", cfg.GetMinIOEndpoint(), "bucket", cfg.GetMinIOBucket())
	}

	report, err := driver.Run(ctx)
	for _, f := range report.Failed() {
		fmt.Printf("Failed file: %s (%v)\n", f.Input, f.Err)
	}
	if err != nil {
		return err
	}

	written, unparseable := report.Numbers()
	fmt.Printf("%d file(s), %d failed, %d number(s) written, %d unparseable\n",
		len(report.Files), len(report.Failed()), written, unparseable)
	return nil
}

func newLogger(cfg config.LogConfig) (*logger.Logger, *os.File, error) {
	logFile, err := logger.OpenFile(cfg.GetLogFile())
	if err != nil {
		return nil, nil, err
	}

	var sink io.Writer = logFile
	if cfg.GetLogToStdout() {
		sink = io.MultiWriter(logFile, os.Stdout)
	}
	return logger.New(cfg.GetEnv(), sink), logFile, nil
}

func newNormalizer(cfg config.NormalizerConfig, log *logger.Logger) (*phone.Normalizer, error) {
	policy, err := phone.ParseMatchPolicy(cfg.GetPrefixMatchPolicy())
	if err != nil {
		return nil, err
	}

	prefixes := phone.DefaultPrefixTable()
	if path := cfg.GetPrefixTableFile(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open prefix table: %w", err)
		}
		defer f.Close()

		prefixes, err = phone.LoadPrefixTable(f, validator.New())
		if err != nil {
			return nil, err
		}
		log.Info("loaded prefix table", "path", path, "entries", len(prefixes))
	}

	return phone.New(phone.Options{
		Prefixes:      prefixes,
		DefaultRegion: cfg.GetDefaultRegion(),
		Policy:        policy,
		Sentinel:      cfg.GetSentinel(),
		Strict:        cfg.GetStrictValidation(),
		Logger:        log,
	})
}
