package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ayusman/mudra/internal/feature"
)

func testSample(label string, seed float64) feature.Sample {
	vec := make(feature.Vector, feature.VectorSize)
	for i := range vec {
		vec[i] = seed + float64(i)*0.0001
	}
	return feature.Sample{Label: label, Features: vec}
}

func TestOpen_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")

	if _, err := Open(path); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read dataset file: %v", err)
	}

	first := strings.SplitN(string(data), "\n", 2)[0]
	if !strings.HasPrefix(first, "label,x0,y0,z0,") {
		t.Errorf("unexpected header start: %q", first)
	}
	if !strings.HasSuffix(first, "x20,y20,z20") {
		t.Errorf("unexpected header end: %q", first)
	}
	if got := len(strings.Split(first, ",")); got != 64 {
		t.Errorf("expected 64 header columns, got %d", got)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := ds.Append(testSample("fist", 0.1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Re-open must not duplicate the header or alter existing rows
	if _, err := Open(path); err != nil {
		t.Fatalf("second Open() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open dataset file: %v", err)
	}
	defer f.Close()

	var headers, rows int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "label,") {
			headers++
		} else {
			rows++
		}
	}

	if headers != 1 {
		t.Errorf("expected exactly 1 header row, got %d", headers)
	}
	if rows != 1 {
		t.Errorf("expected 1 sample row, got %d", rows)
	}
}

func TestAppend_ReadAll_RoundTrip(t *testing.T) {
	ds, err := Open(filepath.Join(t.TempDir(), "samples.csv"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []feature.Sample{
		testSample("fist", 0.1),
		testSample("open", 0.2),
		testSample("fist", 0.3),
	}

	for _, s := range want {
		if err := ds.Append(s); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := ds.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}

	// Append order and values are preserved exactly
	for i := range want {
		if got[i].Label != want[i].Label {
			t.Errorf("sample %d: label %q, want %q", i, got[i].Label, want[i].Label)
		}
		for j := range want[i].Features {
			if got[i].Features[j] != want[i].Features[j] {
				t.Fatalf("sample %d feature %d: got %v, want %v",
					i, j, got[i].Features[j], want[i].Features[j])
			}
		}
	}
}

func TestAppend_RejectsWrongVectorLength(t *testing.T) {
	ds, err := Open(filepath.Join(t.TempDir(), "samples.csv"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	s := feature.Sample{Label: "fist", Features: make(feature.Vector, 10)}
	if err := ds.Append(s); err == nil {
		t.Error("expected error for short feature vector")
	}
}

func TestLabelCounts(t *testing.T) {
	ds, err := Open(filepath.Join(t.TempDir(), "samples.csv"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := ds.Append(testSample("fist", float64(i))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := ds.Append(testSample("open", float64(i))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	counts, err := ds.LabelCounts()
	if err != nil {
		t.Fatalf("LabelCounts() error = %v", err)
	}

	if counts["fist"] != 3 || counts["open"] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if len(counts) != 2 {
		t.Errorf("expected 2 labels, got %d", len(counts))
	}
}

func TestAppend_Concurrent(t *testing.T) {
	ds, err := Open(filepath.Join(t.TempDir(), "samples.csv"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	const writers = 8
	const perWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				label := fmt.Sprintf("g%d", w)
				if err := ds.Append(testSample(label, float64(i))); err != nil {
					t.Errorf("Append() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	samples, err := ds.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	// No row was torn or lost
	if len(samples) != writers*perWriter {
		t.Errorf("expected %d samples, got %d", writers*perWriter, len(samples))
	}
	for i, s := range samples {
		if len(s.Features) != feature.VectorSize {
			t.Fatalf("sample %d has %d features", i, len(s.Features))
		}
	}
}
