package roster

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rosterlink/rosterlink/pkg/errors"
)

// filePermissions is the mode for CSV artifacts written by the engine.
const filePermissions = 0o644

// utf8BOM is the byte-order mark some spreadsheet exports prepend.
const utf8BOM = "\ufeff"

// ReadTable reads a CSV artifact into a Table. The first row is the
// header; rows shorter than the header are padded with empty cells and
// longer rows have their surplus cells dropped, matching how the source
// spreadsheets behave. A missing file is reported as ErrMissingInput so
// callers can abort before any partial write.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingInput, path)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	table, err := readTable(f)
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	return table, nil
}

func readTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return NewTable(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := NewTable(header...)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		record := NewRecord()
		for i, name := range table.Headers {
			if i < len(row) {
				record.Set(name, row[i])
			} else {
				record.Set(name, "")
			}
		}
		table.Append(record)
	}
	return table, nil
}

// WriteTable writes a Table to path, header first, one row per record.
// Only columns present in the header set are emitted; any other values a
// record carries are ignored. The write is whole-file: compute the full
// result, then replace the artifact.
func WriteTable(path string, table *Table) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	if err := writeTable(f, table); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func writeTable(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return err
	}
	row := make([]string, len(table.Headers))
	for _, record := range table.Rows {
		for i, name := range table.Headers {
			row[i] = record.Get(name)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Exists reports whether an artifact is present on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
