package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
)

// Archive formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ArchiveWriter writes each run's rows to a timestamped file under Dir.
type ArchiveWriter struct {
	Dir    string
	Format string
}

// NewArchiveWriter returns a writer, defaulting to CSV.
func NewArchiveWriter(dir, format string) *ArchiveWriter {
	if format != FormatXLSX {
		format = FormatCSV
	}
	return &ArchiveWriter{Dir: dir, Format: format}
}

// Path returns the archive file for a run: leads_YYYYMMDD_HHMMSS_<id>.<ext>,
// where id is the first 8 characters of the run ID.
func (w *ArchiveWriter) Path(run model.Run) string {
	name := "leads_" + run.CreatedAt.Format("20060102_150405")
	if id := shortID(run.ID); id != "" {
		name += "_" + id
	}
	return filepath.Join(w.Dir, name+"."+w.Format)
}

func shortID(id string) string {
	id = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Append implements Persister. An empty row set still produces a header-only file.
func (w *ArchiveWriter) Append(_ context.Context, run model.Run, rows []model.ScoredRow) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return eris.Wrapf(err, "archive: create dir %s", w.Dir)
	}
	path := w.Path(run)

	var err error
	if w.Format == FormatXLSX {
		err = writeXLSX(path, rows)
	} else {
		err = writeCSV(path, rows)
	}
	if err != nil {
		return err
	}

	zap.L().Info("archive: wrote rows",
		zap.String("run_id", run.ID),
		zap.String("path", path),
		zap.Int("rows", len(rows)),
	)
	return nil
}

func writeCSV(path string, rows []model.ScoredRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "archive: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	cw := csv.NewWriter(f)
	if err := cw.Write(model.Columns()); err != nil {
		return eris.Wrap(err, "archive: write header")
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return eris.Wrap(err, "archive: write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "archive: flush")
	}
	return eris.Wrap(f.Close(), "archive: close")
}

func writeXLSX(path string, rows []model.ScoredRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "archive: add sheet")
	}
	addRow(sheet, model.Columns())
	for _, r := range rows {
		addRow(sheet, r.Values())
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "archive: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
