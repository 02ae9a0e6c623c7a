package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVSkipsHeader(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "train.csv", "label,p0,p1,p2\n5,0,128,255\n0,1,2,3\n")
	examples, err := LoadCSV(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, Example{Label: 5, Features: []float64{0, 128, 255}}, examples[0])
	assert.Equal(t, Example{Label: 0, Features: []float64{1, 2, 3}}, examples[1])
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "train.csv", "1.0,0.5\n0,0.25\n1,1\n")
	examples, err := LoadCSV(context.Background(), path, Options{MaxRows: 2})
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, 1, examples[0].Label)
	assert.Equal(t, []float64{0.25}, examples[1].Features)
}

func TestLoadCSVRejectsBadRows(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCSV(context.Background(), writeCSV(t, dir, "ragged.csv", "1,2,3\n0,1\n"), Options{})
	require.ErrorIs(t, err, ErrRowWidth)

	_, err = LoadCSV(context.Background(), writeCSV(t, dir, "width.csv", "1,2,3\n"), Options{Features: 3})
	require.ErrorIs(t, err, ErrRowWidth)

	_, err = LoadCSV(context.Background(), writeCSV(t, dir, "label.csv", "1,2\n1.5,3\n"), Options{})
	require.Error(t, err)

	_, err = LoadCSV(context.Background(), writeCSV(t, dir, "feature.csv", "1,x\n"), Options{})
	require.Error(t, err)

	_, err = LoadCSV(context.Background(), filepath.Join(dir, "missing.csv"), Options{})
	require.Error(t, err)
}

func TestLoadCSVCanceled(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "train.csv", "1,2\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadCSV(ctx, path, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadPathDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "part-1.csv", "label,a,b\n1,1,1\n")
	writeCSV(t, filepath.Join(dir, "nested"), "part-0.csv", "0,0,0\n2,2,2\n")
	writeCSV(t, dir, "notes.txt", "ignored")

	examples, err := LoadPath(context.Background(), dir, Options{})
	require.NoError(t, err)
	labels := make([]int, len(examples))
	for i, ex := range examples {
		labels[i] = ex.Label
	}
	assert.Equal(t, []int{0, 2, 1}, labels)

	limited, err := LoadPath(context.Background(), dir, Options{MaxRows: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = LoadPath(context.Background(), t.TempDir(), Options{})
	require.Error(t, err)
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
