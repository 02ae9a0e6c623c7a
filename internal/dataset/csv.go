package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Example is one labelled record: the first CSV column is the label, the
// remaining columns are features.
type Example struct {
	Label    int
	Features []float64
}

// ErrRowWidth indicates a row whose feature count differs from the others.
var ErrRowWidth = errors.New("dataset: inconsistent row width")

// Options configures CSV decoding.
type Options struct {
	// Features is the expected feature count per row. Zero takes the width
	// of the first data row.
	Features int
	// MaxRows stops the stream after this many rows. Zero reads everything.
	MaxRows int
}

// StreamCSV streams examples from the CSV file at path. A first row whose
// label column is not numeric is treated as a header and skipped.
func StreamCSV(ctx context.Context, path string, opts Options) (<-chan Example, <-chan error) {
	out := make(chan Example)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		f, err := os.Open(path)
		if err != nil {
			errCh <- fmt.Errorf("open csv: %w", err)
			return
		}
		defer f.Close()

		r := csv.NewReader(bufio.NewReader(f))
		r.ReuseRecord = true
		r.FieldsPerRecord = -1
		width := opts.Features
		rows := 0

		for line := 1; ; line++ {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("read csv: %w", err)
				return
			}
			if line == 1 && isHeader(record) {
				continue
			}
			ex, err := parseRecord(record)
			if err != nil {
				errCh <- fmt.Errorf("%s line %d: %w", path, line, err)
				return
			}
			if width == 0 {
				width = len(ex.Features)
			}
			if len(ex.Features) != width {
				errCh <- fmt.Errorf("%s line %d: %w: got %d features, want %d",
					path, line, ErrRowWidth, len(ex.Features), width)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- ex:
			}
			rows++
			if opts.MaxRows > 0 && rows >= opts.MaxRows {
				return
			}
		}
	}()

	return out, errCh
}

// LoadCSV reads every example of the CSV file at path into memory.
func LoadCSV(ctx context.Context, path string, opts Options) ([]Example, error) {
	samples, errCh := StreamCSV(ctx, path, opts)
	var examples []Example
	for samples != nil || errCh != nil {
		select {
		case ex, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			examples = append(examples, ex)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return examples, nil
}

// LoadPath loads path when it is a file, or every CSV file discovered
// beneath it when it is a directory.
func LoadPath(ctx context.Context, path string, opts Options) ([]Example, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if !info.IsDir() {
		return LoadCSV(ctx, path, opts)
	}
	files, err := Discover(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no csv files under %s", path)
	}
	var all []Example
	for _, file := range files {
		part := opts
		if opts.MaxRows > 0 {
			part.MaxRows = opts.MaxRows - len(all)
		}
		if part.Features == 0 && len(all) > 0 {
			part.Features = len(all[0].Features)
		}
		examples, err := LoadCSV(ctx, file, part)
		if err != nil {
			return nil, err
		}
		all = append(all, examples...)
		if opts.MaxRows > 0 && len(all) >= opts.MaxRows {
			break
		}
	}
	return all, nil
}

func parseRecord(record []string) (Example, error) {
	if len(record) < 2 {
		return Example{}, fmt.Errorf("%w: row needs a label and at least one feature", ErrRowWidth)
	}
	label, err := parseLabel(record[0])
	if err != nil {
		return Example{}, err
	}
	features := make([]float64, len(record)-1)
	for i, field := range record[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Example{}, fmt.Errorf("feature %d: %w", i, err)
		}
		features[i] = v
	}
	return Example{Label: label, Features: features}, nil
}

// parseLabel accepts integral labels written as "7" or "7.0".
func parseLabel(field string) (int, error) {
	field = strings.TrimSpace(field)
	if v, err := strconv.Atoi(field); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("label: %w", err)
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("label %q is not an integer", field)
	}
	return int(f), nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
	return err != nil
}
