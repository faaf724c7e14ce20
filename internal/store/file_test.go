package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salesdb/internal/model"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	goods := []model.Good{
		{ID: 2, Category: "coffee", Price: 450},
		{ID: 1, Category: "tea", Price: 250},
		{ID: 3, Category: "Fish & Chips", Price: 0},
	}
	src := createGoodsDB(t, goods...)
	path := filepath.Join(t.TempDir(), "Good.json")

	require.NoError(t, Serialize[model.Good](src, path))

	dst := createTestDB(t)
	require.NoError(t, Deserialize[model.Good](dst, path))

	got, err := GetTable[model.Good](dst)
	require.NoError(t, err)
	assert.Equal(t, goods, got)
	assert.Equal(t, []string{"Good"}, dst.Tables())
}

func TestSerialize_EmptyTable(t *testing.T) {
	src := createGoodsDB(t)
	path := filepath.Join(t.TempDir(), "Good.json")

	require.NoError(t, Serialize[model.Good](src, path))

	dst := createTestDB(t)
	require.NoError(t, Deserialize[model.Good](dst, path))
	got, err := GetTable[model.Good](dst)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSerialize_TableNotFound(t *testing.T) {
	db := createTestDB(t)
	path := filepath.Join(t.TempDir(), "Sale.json")

	err := Serialize[model.Sale](db, path)
	assert.True(t, IsTableNotFound(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSerialize_IOErrorLeavesNoFile(t *testing.T) {
	db := createGoodsDB(t, model.Good{ID: 1})
	path := filepath.Join(t.TempDir(), "missing", "Good.json")

	err := Serialize[model.Good](db, path)
	require.Error(t, err)
	assert.True(t, IsIO(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, path, se.Path)
}

func TestSerialize_FailureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Good.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	// A directory at the destination makes the final rename fail.
	target := filepath.Join(dir, "as-dir")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

	db := createGoodsDB(t, model.Good{ID: 1})
	err := Serialize[model.Good](db, target)
	require.Error(t, err)
	assert.True(t, IsIO(err))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file left: %s", e.Name())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestSerialize_OverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Good.json")

	db := createGoodsDB(t, model.Good{ID: 1})
	require.NoError(t, Serialize[model.Good](db, path))

	require.NoError(t, InsertValue(db, model.Good{ID: 2}))
	require.NoError(t, Serialize[model.Good](db, path))

	dst := createTestDB(t)
	require.NoError(t, Deserialize[model.Good](dst, path))
	n, err := Len[model.Good](dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeserialize_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Good.json")
	src := createGoodsDB(t, model.Good{ID: 10, Category: "new"})
	require.NoError(t, Serialize[model.Good](src, path))

	dst := createGoodsDB(t, model.Good{ID: 1, Category: "old"}, model.Good{ID: 2, Category: "old"})
	require.NoError(t, Deserialize[model.Good](dst, path))

	got, err := GetTable[model.Good](dst)
	require.NoError(t, err)
	assert.Equal(t, []model.Good{{ID: 10, Category: "new"}}, got)
}

func TestDeserialize_MalformedLeavesTableUnchanged(t *testing.T) {
	dir := t.TempDir()
	original := []model.Good{{ID: 1, Category: "a", Price: 1}, {ID: 2, Category: "b", Price: 2}}

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, Serialize[model.Good](createGoodsDB(t, model.Good{ID: 9}), valid))
	validData, err := os.ReadFile(valid)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":   "{not json",
		"truncated": string(validData[:len(validData)-10]),
		"empty":     "",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			db := createGoodsDB(t, original...)
			err := Deserialize[model.Good](db, path)
			require.Error(t, err)
			assert.True(t, IsDeserialization(err))

			got, err := GetTable[model.Good](db)
			require.NoError(t, err)
			assert.Equal(t, original, got)
		})
	}
}

func TestDeserialize_WrongTableRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Good.json")
	require.NoError(t, Serialize[model.Good](createGoodsDB(t, model.Good{ID: 1}), path))

	db := createTestDB(t)
	err := Deserialize[model.Shop](db, path)
	assert.True(t, IsDeserialization(err))

	_, err = GetTable[model.Shop](db)
	assert.True(t, IsTableNotFound(err), "failed deserialize must not create the table")
}

func TestDeserialize_MissingFile(t *testing.T) {
	db := createTestDB(t)
	err := Deserialize[model.Good](db, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, IsIO(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteReadTable_Stream(t *testing.T) {
	src := createTestDB(t)
	require.NoError(t, CreateTable[model.Sale](src))
	sales := []model.Sale{
		{ID: 1, GoodID: 1, BuyerID: 2, ShopID: 3, Quantity: 4},
		{ID: 2, GoodID: 5, BuyerID: 6, ShopID: 7, Quantity: 8},
	}
	for _, s := range sales {
		require.NoError(t, InsertValue(src, s))
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable[model.Sale](src, &buf))

	dst := createTestDB(t)
	require.NoError(t, ReadTable[model.Sale](dst, &buf))
	got, err := GetTable[model.Sale](dst)
	require.NoError(t, err)
	assert.Equal(t, sales, got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("reset by peer") }

func TestWriteReadTable_StreamErrors(t *testing.T) {
	db := createGoodsDB(t, model.Good{ID: 1})

	assert.True(t, IsIO(WriteTable[model.Good](db, failingWriter{})))
	assert.True(t, IsIO(ReadTable[model.Good](db, failingReader{})))
	assert.True(t, IsTableNotFound(WriteTable[model.Shop](db, &bytes.Buffer{})))
	assert.True(t, IsDeserialization(ReadTable[model.Good](db, strings.NewReader("[]"))))

	n, err := Len[model.Good](db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeserialize_MalformedErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Good.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	err := Deserialize[model.Good](createTestDB(t), path)
	require.Error(t, err)
	assert.True(t, IsDeserialization(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, path, se.Path)
	assert.Equal(t, "Good", se.Table)
}

func TestSerialize_MatchesWriteTable(t *testing.T) {
	db := createGoodsDB(t, model.Good{ID: 1, Category: "tea", Price: 2})
	path := filepath.Join(t.TempDir(), "Good.json")
	require.NoError(t, Serialize[model.Good](db, path))

	var buf bytes.Buffer
	require.NoError(t, WriteTable[model.Good](db, &buf))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data)
}
