// Package dataset provides the durable, append-only store of labeled
// gesture samples used for training.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
)

// Dataset is a flat-table CSV store of labeled feature vectors.
// The file holds one header row (label plus 63 coordinate columns) followed
// by one row per sample, in append order. Rows are never mutated or removed.
type Dataset struct {
	path string
	mu   sync.Mutex
}

// Open creates a Dataset backed by the given file path. If the file does not
// exist it is created with the fixed schema header; an existing file is left
// untouched, so Open is idempotent.
func Open(path string) (*Dataset, error) {
	d := &Dataset{path: path}
	if err := d.init(); err != nil {
		return nil, fmt.Errorf("failed to initialize dataset: %w", err)
	}
	return d, nil
}

// Path returns the backing file path.
func (d *Dataset) Path() string {
	return d.path
}

// header returns the fixed column schema: label, x0, y0, z0, ..., x20, y20, z20.
func header() []string {
	cols := make([]string, 0, 1+feature.VectorSize)
	cols = append(cols, "label")
	for i := 0; i < detector.NumLandmarks; i++ {
		cols = append(cols,
			fmt.Sprintf("x%d", i),
			fmt.Sprintf("y%d", i),
			fmt.Sprintf("z%d", i),
		)
	}
	return cols
}

func (d *Dataset) init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := os.Stat(d.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// Append durably writes one sample to the dataset. The write lock serializes
// appends with each other and with reads, so a training read never observes
// a torn row.
func (d *Dataset) Append(s feature.Sample) error {
	if len(s.Features) != feature.VectorSize {
		return &feature.InvalidVectorLengthError{Got: len(s.Features)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	row := make([]string, 0, 1+feature.VectorSize)
	row = append(row, s.Label)
	for _, v := range s.Features {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	return f.Sync()
}

// ReadAll returns every stored sample in append order. Used by training,
// not by the inference path.
func (d *Dataset) ReadAll() ([]feature.Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 1 + feature.VectorSize

	// First row is always the header
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var samples []feature.Sample
	for row := 2; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		vec := make(feature.Vector, 0, feature.VectorSize)
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", row, i+2, err)
			}
			vec = append(vec, v)
		}

		samples = append(samples, feature.Sample{Label: record[0], Features: vec})
	}

	return samples, nil
}

// LabelCounts returns the number of stored samples per label.
func (d *Dataset) LabelCounts() (map[string]int, error) {
	samples, err := d.ReadAll()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Label]++
	}
	return counts, nil
}
