package batch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phone_standardizer/platform/apperr"
	"phone_standardizer/platform/logger"
	"phone_standardizer/platform/phone"

	"github.com/stretchr/testify/require"
)

const header = "Firma,Weitere Vornamen,Nachname,tel\n"

type testConfig struct {
	in, out  string
	encoding string
}

func (c testConfig) GetInputDir() string   { return c.in }
func (c testConfig) GetOutputDir() string  { return c.out }
func (c testConfig) GetPhoneField() string { return "tel" }
func (c testConfig) GetNameFields() []string {
	return []string{"Nachname", "Weitere Vornamen", "Firma"}
}
func (c testConfig) GetDelimiter() rune { return ',' }
func (c testConfig) GetInputEncoding() string {
	if c.encoding == "" {
		return "utf-8"
	}
	return c.encoding
}
func (c testConfig) GetSignedValue() string { return "0" }

type fakeArchiver struct {
	keys     []string
	contents []string
	err      error
}

func (a *fakeArchiver) Archive(_ context.Context, runID, fileName string, r io.Reader, size int64) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", errors.New("size mismatch")
	}
	key := runID + "/" + fileName
	a.keys = append(a.keys, key)
	a.contents = append(a.contents, string(data))
	return key, nil
}

func newNormalizer(t *testing.T, log *logger.Logger) *phone.Normalizer {
	t.Helper()
	n, err := phone.New(phone.Options{DefaultRegion: "AT", Logger: log})
	require.NoError(t, err)
	return n
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
}

func setup(t *testing.T) (testConfig, *bytes.Buffer, *Driver) {
	t.Helper()
	root := t.TempDir()
	cfg := testConfig{in: filepath.Join(root, "in"), out: filepath.Join(root, "out")}
	require.NoError(t, os.MkdirAll(cfg.in, 0o755))

	var buf bytes.Buffer
	log := logger.New("production", &buf)
	return cfg, &buf, New(cfg, newNormalizer(t, log), log)
}

func TestRunWritesOneRowPerNumber(t *testing.T) {
	cfg, logs, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "kontakte.csv"), header+
		"ACME GmbH,,Huber,0664 1234567\n"+
		"ACME GmbH,Anna,,\"123,456\"\n"+
		"Weber KG,,,\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.NoError(t, report.Err())

	res := report.Files[0]
	require.Equal(t, 3, res.Rows)
	require.Equal(t, 3, res.Numbers)
	require.Equal(t, 1, res.NoPhone)

	std := newNormalizer(t, nil)
	lines := readLines(t, filepath.Join(cfg.out, "kontakte.csv"))
	require.Equal(t, []string{
		"Name,Handynummer,Gezeichnet",
		"Huber,+436641234567,0",
		"Anna," + std.Standardize("123") + ",0",
		"Anna," + std.Standardize("456") + ",0",
	}, lines)

	require.Equal(t, 1, strings.Count(logs.String(), `"msg":"no_phone_number"`))
	require.Equal(t, 3, strings.Count(logs.String(), `"msg":"phone_standardized"`))
}

func TestRunWhitespacePhoneWritesSentinel(t *testing.T) {
	cfg, logs, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "kontakte.csv"), header+
		",,Huber,\"   \"\n"+
		",Anna,,0664 1234567\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)

	res := report.Files[0]
	require.Equal(t, 0, res.NoPhone)
	require.Equal(t, 2, res.Numbers)
	require.Equal(t, 1, res.Unparseable)

	lines := readLines(t, filepath.Join(cfg.out, "kontakte.csv"))
	require.Equal(t, []string{
		"Name,Handynummer,Gezeichnet",
		"Huber,unknown,0",
		"Anna,+436641234567,0",
	}, lines)
	require.NotContains(t, logs.String(), `"msg":"no_phone_number"`)
}

func TestRunReportsProgressBeforeEachFile(t *testing.T) {
	cfg, _, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "a.csv"), header+",,Huber,0664 1234567\n")
	writeFile(t, filepath.Join(cfg.in, "b.csv"), header+",,Gruber,0664 1234567\n")

	var seen []string
	driver.SetProgress(func(in string) {
		_, err := os.Stat(filepath.Join(cfg.out, filepath.Base(in)))
		require.True(t, errors.Is(err, os.ErrNotExist), "progress must fire before the output is written")
		seen = append(seen, filepath.Base(in))
	})

	_, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.csv", "b.csv"}, seen)
}

func TestRunFlattensSubdirectoriesAndKeepsNames(t *testing.T) {
	cfg, _, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "a.csv"), header+",,Huber,+43 664 1234567\n")
	writeFile(t, filepath.Join(cfg.in, "nested", "b.txt"), header+",,Gruber,06641234567\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 2)
	require.Equal(t, 2, report.Succeeded())

	for _, name := range []string{"a.csv", "b.txt"} {
		lines := readLines(t, filepath.Join(cfg.out, name))
		require.Len(t, lines, 2)
		require.True(t, strings.HasSuffix(lines[1], ",+436641234567,0"), lines[1])
	}
}

func TestRunIsolatesFailingFiles(t *testing.T) {
	cfg, logs, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "1-broken.csv"), header+",,Huber,\"0664\"x\n")
	writeFile(t, filepath.Join(cfg.in, "2-latin1.csv"), header+",,M\xfcller,0664 1234567\n")
	writeFile(t, filepath.Join(cfg.in, "3-good.csv"), header+",,Huber,0664 1234567\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	failed := report.Failed()
	require.Len(t, failed, 2)
	require.True(t, apperr.Is(failed[0].Err, apperr.KindMalformed), failed[0].Err)
	require.True(t, apperr.Is(failed[1].Err, apperr.KindEncoding), failed[1].Err)
	require.Error(t, report.Err())

	require.True(t, report.Files[2].OK())
	lines := readLines(t, filepath.Join(cfg.out, "3-good.csv"))
	require.Equal(t, "Huber,+436641234567,0", lines[1])

	require.Equal(t, 2, strings.Count(logs.String(), `"msg":"file_failed"`))
}

func TestRunReadsConfiguredEncoding(t *testing.T) {
	cfg, _, _ := setup(t)
	cfg.encoding = "windows-1252"
	driver := New(cfg, newNormalizer(t, nil), nil)
	writeFile(t, filepath.Join(cfg.in, "latin1.csv"), header+",,M\xfcller,0664 1234567\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Err())

	lines := readLines(t, filepath.Join(cfg.out, "latin1.csv"))
	require.Equal(t, "Müller,+436641234567,0", lines[1])
}

func TestRunCountsUnparseableNumbers(t *testing.T) {
	cfg, logs, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "kontakte.csv"), header+",,Huber,abc\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)

	written, unparseable := report.Numbers()
	require.Equal(t, 1, written)
	require.Equal(t, 1, unparseable)

	lines := readLines(t, filepath.Join(cfg.out, "kontakte.csv"))
	require.Equal(t, "Huber,unknown,0", lines[1])
	require.Contains(t, logs.String(), `"msg":"phone_unparseable"`)
}

func TestRunArchivesSuccessfulOutputs(t *testing.T) {
	cfg, _, driver := setup(t)
	archiver := &fakeArchiver{}
	driver.SetArchiver(archiver)
	writeFile(t, filepath.Join(cfg.in, "kontakte.csv"), header+",,Huber,0664 1234567\n")
	writeFile(t, filepath.Join(cfg.in, "kaputt.csv"), header+",,Huber,\"0664\"x\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, archiver.keys, 1)
	require.Equal(t, report.RunID+"/kontakte.csv", archiver.keys[0])
	require.Equal(t, "Name,Handynummer,Gezeichnet\r\nHuber,+436641234567,0\r\n", archiver.contents[0])

	for _, f := range report.Files {
		if f.OK() {
			require.Equal(t, archiver.keys[0], f.ArchiveKey)
		} else {
			require.Empty(t, f.ArchiveKey)
		}
	}
}

func TestRunArchiveFailureDoesNotFailFile(t *testing.T) {
	cfg, logs, driver := setup(t)
	driver.SetArchiver(&fakeArchiver{err: errors.New("bucket unavailable")})
	writeFile(t, filepath.Join(cfg.in, "kontakte.csv"), header+",,Huber,0664 1234567\n")

	report, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Files[0].OK())
	require.Contains(t, logs.String(), "archive_failed")
}

func TestRunMissingInputDirectory(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig{in: filepath.Join(root, "missing"), out: filepath.Join(root, "out")}
	driver := New(cfg, newNormalizer(t, nil), nil)

	_, err := driver.Run(context.Background())
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.KindNotFound), err)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cfg, _, driver := setup(t)
	writeFile(t, filepath.Join(cfg.in, "kontakte.csv"), header+",,Huber,0664 1234567\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := driver.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, report.Files)
}

func TestProcessFileMissingInput(t *testing.T) {
	root := t.TempDir()
	driver := New(testConfig{in: root, out: root}, newNormalizer(t, nil), nil)

	res := driver.ProcessFile(filepath.Join(root, "nope.csv"), filepath.Join(root, "out.csv"))
	require.False(t, res.OK())
	require.True(t, apperr.Is(res.Err, apperr.KindNotFound), res.Err)

	_, err := os.Stat(filepath.Join(root, "out.csv"))
	require.True(t, errors.Is(err, os.ErrNotExist), "output must not be created when input is missing")
}
