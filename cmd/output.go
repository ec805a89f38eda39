package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/export"
)

// writeOutput renders t to path, or to out when path is empty. XLSX needs a
// file.
func writeOutput(out io.Writer, t export.Table, format, path string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	if path == "" {
		if f == export.FormatXLSX {
			return eris.New("xlsx output requires --output")
		}
		return export.Write(out, t, f)
	}

	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := export.Write(file, t, f); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}

	zap.L().Info("wrote export",
		zap.String("path", path),
		zap.String("format", string(f)),
		zap.Int("rows", len(t.Rows)),
	)
	return nil
}
