// Package batch converts a directory of contact exports into standardized
// phone lists, one output file per input file.
package batch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"phone_standardizer/internal/adapters/storage"
	"phone_standardizer/internal/contacts"
	"phone_standardizer/platform/apperr"
	"phone_standardizer/platform/logger"
	"phone_standardizer/platform/phone"

	"github.com/google/uuid"
)

// Config provides the settings the driver needs.
type Config interface {
	GetInputDir() string
	GetOutputDir() string
	GetPhoneField() string
	GetNameFields() []string
	GetDelimiter() rune
	GetInputEncoding() string
	GetSignedValue() string
}

// Standardizer resolves one raw phone value.
type Standardizer interface {
	Resolve(raw string) phone.Result
}

// Driver runs the conversion sequentially, one file at a time.
type Driver struct {
	cfg      Config
	std      Standardizer
	archiver storage.Archiver
	progress func(in string)
	log      *logger.Logger
}

// New creates a driver.
func New(cfg Config, std Standardizer, log *logger.Logger) *Driver {
	if log == nil {
		log = logger.Discard()
	}
	return &Driver{cfg: cfg, std: std, log: log}
}

// SetArchiver enables uploading every successfully written output.
func (d *Driver) SetArchiver(a storage.Archiver) {
	d.archiver = a
}

// SetProgress registers fn to be called with each input path just before
// the file is processed.
func (d *Driver) SetProgress(fn func(in string)) {
	d.progress = fn
}

// Run processes every file under the input directory. File-level failures
// are recorded in the report; the returned error is only set when the input
// directory cannot be walked or ctx is cancelled between files.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := d.log.WithRunID(report.RunID)

	inputs, err := d.listInputs(log)
	if err != nil {
		return report, err
	}

	outDir := d.cfg.GetOutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Warn("failed to create output directory", "path", outDir, "error", err)
	}

	log.Info("batch started", "input_dir", d.cfg.GetInputDir(), "output_dir", outDir, "files", len(inputs))

	produced := make(map[string]string, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			log.Warn("batch interrupted", "processed", len(report.Files), "remaining", len(inputs)-len(report.Files))
			return report, err
		}

		name := filepath.Base(in)
		out := filepath.Join(outDir, name)
		if prev, ok := produced[name]; ok {
			log.Warn("output name already produced in this run, overwriting", "file", name, "previous_input", prev, "input", in)
		}
		produced[name] = in

		if d.progress != nil {
			d.progress(in)
		}
		fileLog := log.WithFile(name)
		fileLog.Info("processing file", "path", in)

		result := d.processFile(fileLog, in, out)
		if result.OK() {
			d.archive(ctx, fileLog, report.RunID, &result)
			fileLog.Info("file processed",
				"rows", result.Rows,
				"numbers", result.Numbers,
				"unparseable", result.Unparseable,
				"no_phone", result.NoPhone,
			)
		} else {
			fileLog.FileFailed(in, apperr.GetKind(result.Err).String(), result.Err)
		}
		report.Files = append(report.Files, result)
	}

	written, unparseable := report.Numbers()
	log.Info("batch finished",
		"files", len(report.Files),
		"failed", len(report.Files)-report.Succeeded(),
		"numbers", written,
		"unparseable", unparseable,
	)
	return report, nil
}

// ProcessFile converts a single input file into out.
func (d *Driver) ProcessFile(in, out string) FileResult {
	return d.processFile(d.log.WithFile(filepath.Base(in)), in, out)
}

func (d *Driver) listInputs(log *logger.Logger) ([]string, error) {
	root := d.cfg.GetInputDir()
	var inputs []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("skipping unreadable path", "path", path, "error", err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fileError("batch.Run", "failed to walk input directory", err)
	}
	return inputs, nil
}

func (d *Driver) processFile(log *logger.Logger, in, out string) (res FileResult) {
	const op = "batch.ProcessFile"
	res = FileResult{Input: in, Output: out}

	src, err := os.Open(in)
	if err != nil {
		res.Err = fileError(op, "failed to open input", err)
		return res
	}
	defer src.Close()

	decoded, err := contacts.DecodeReader(src, d.cfg.GetInputEncoding())
	if err != nil {
		res.Err = err
		return res
	}

	dst, err := os.Create(out)
	if err != nil {
		res.Err = fileError(op, "failed to create output", err)
		return res
	}

	w, err := contacts.NewWriter(dst)
	if err != nil {
		dst.Close()
		res.Err = err
		return res
	}
	defer func() {
		flushErr := w.Flush()
		closeErr := dst.Close()
		if res.Err == nil && flushErr != nil {
			res.Err = flushErr
		}
		if res.Err == nil && closeErr != nil {
			res.Err = fileError(op, "failed to close output", closeErr)
		}
	}()

	r, err := contacts.NewReader(decoded, d.cfg.GetDelimiter())
	if err != nil {
		res.Err = withOp(err, op)
		return res
	}

	phoneField := d.cfg.GetPhoneField()
	if !r.Has(phoneField) {
		log.Warn("phone column missing from header", "column", phoneField)
	}
	nameFields := d.cfg.GetNameFields()
	signed := d.cfg.GetSignedValue()

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return res
		}
		if err != nil {
			res.Err = withOp(err, op)
			return res
		}
		res.Rows++

		name := contacts.DisplayName(rec, nameFields)
		numbers := contacts.SplitPhones(rec.Get(phoneField))
		if len(numbers) == 0 {
			res.NoPhone++
			log.NoPhone(name, rec.Line)
			continue
		}

		for _, raw := range numbers {
			result := d.std.Resolve(raw)
			if !result.OK() {
				res.Unparseable++
			}
			if err := w.Write(contacts.Row{Name: name, Number: result.E164, Signed: signed}); err != nil {
				res.Err = withOp(err, op)
				return res
			}
			res.Numbers++
			log.PhoneStandardized(name, result.E164)
		}
	}
}

func (d *Driver) archive(ctx context.Context, log *logger.Logger, runID string, res *FileResult) {
	if d.archiver == nil {
		return
	}

	f, err := os.Open(res.Output)
	if err != nil {
		log.Error("archive_failed", "path", res.Output, "error", err.Error())
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Error("archive_failed", "path", res.Output, "error", err.Error())
		return
	}

	key, err := d.archiver.Archive(ctx, runID, filepath.Base(res.Output), f, info.Size())
	if err != nil {
		log.Error("archive_failed", "path", res.Output, "error", err.Error())
		return
	}
	res.ArchiveKey = key
	log.Info("file archived", "key", key)
}

func fileError(op, message string, err error) error {
	kind := apperr.KindIO
	if errors.Is(err, fs.ErrNotExist) {
		kind = apperr.KindNotFound
	}
	return apperr.Wrap(kind, message, err).WithOp(op)
}

func withOp(err error, op string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Op == "" {
		appErr.Op = op
	}
	return err
}
