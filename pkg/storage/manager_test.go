package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mfcexport/pkg/models"
)

func record(id int, name string) models.FigureRecord {
	return models.FigureRecord{
		ID:           id,
		Name:         name,
		Price:        1000,
		ReleaseDate:  "2020-05-01",
		OwnedCount:   1,
		DetailURL:    "https://myfigurecollection.net/item/" + strconv.Itoa(id),
		ThumbnailURL: "t.jpg",
		FullImageURL: "f.jpg",
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "mfcexport-alice.csv", FileName("alice"))
	assert.Equal(t, "mfcexport-figure_fan_99.csv", FileName("figure fan 99"))
}

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")

	manager, err := NewManager(dir, true)
	require.NoError(t, err)
	assert.Equal(t, dir, manager.GetOutputDir())
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "mfcexport-alice.csv"), manager.Path("alice"))
}

func TestSortByIDIsStableAndCopies(t *testing.T) {
	input := []models.FigureRecord{
		record(30, "c"),
		record(10, "a"),
		record(20, "first twenty"),
		record(20, "second twenty"),
	}

	sorted := SortByID(input)

	var names []string
	for _, r := range sorted {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a", "first twenty", "second twenty", "c"}, names)
	assert.Equal(t, 30, input[0].ID, "input must not be reordered")
}

func TestEncodeFiguresCRLF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFigures(&buf, []models.FigureRecord{record(5, `Saber "Lily"`)}, true))

	expected := "ID,Name,Price (JPY),Release Date,Owned Count,Detail URL,Thumbnail URL,Large Image URL\r\n" +
		`5,"Saber ""Lily""",1000,2020-05-01,1,https://myfigurecollection.net/item/5,t.jpg,f.jpg` + "\r\n"
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("EncodeFigures mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeFiguresLF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFigures(&buf, nil, false))
	assert.Equal(t, strings.Join(models.CSVHeader, ",")+"\n", buf.String())
}

func TestWriteFigures(t *testing.T) {
	manager, err := NewManager(t.TempDir(), true)
	require.NoError(t, err)

	records := []models.FigureRecord{record(300, "c"), record(100, "a"), record(200, "b")}
	path, err := manager.WriteFigures("alice", records)
	require.NoError(t, err)
	assert.Equal(t, manager.Path("alice"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	if diff := cmp.Diff(models.CSVHeader, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"100", "200", "300"}, []string{rows[1][0], rows[2][0], rows[3][0]})

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")
}

func TestWriteFiguresOverwrites(t *testing.T) {
	manager, err := NewManager(t.TempDir(), false)
	require.NoError(t, err)

	_, err = manager.WriteFigures("bob", []models.FigureRecord{record(1, "a"), record(2, "b")})
	require.NoError(t, err)
	path, err := manager.WriteFigures("bob", []models.FigureRecord{record(3, "c")})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "3,c,"))
}

func TestWriteFiguresMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir, true)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = manager.WriteFigures("alice", nil)
	assert.Error(t, err)
}
