package csv

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/habitable/pkg/errors"
	"github.com/ajitpratap0/habitable/pkg/models"
	"github.com/ajitpratap0/habitable/pkg/testutil"
)

type step struct {
	record *models.Record
	err    error
}

func collect(t *testing.T, src *CSVSource) []step {
	t.Helper()
	var steps []step
	for record, err := range src.Records() {
		steps = append(steps, step{record: record, err: err})
	}
	return steps
}

func openSource(t *testing.T, path string) *CSVSource {
	t.Helper()
	src := NewCSVSource(path, testutil.TestLogger(t))
	require.NoError(t, src.Open())
	return src
}

func TestOpenMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "kepler_data.csv"), nil)

	err := src.Open()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFileAccess))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNextBeforeOpen(t *testing.T) {
	src := NewCSVSource("kepler_data.csv", nil)

	_, err := src.Next()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecordsKeyedByHeader(t *testing.T) {
	path := testutil.WriteFile(t, "kepler_data.csv", testutil.KOIHeader+"\n"+
		"CONFIRMED,0.5,1.0,Kepler-42b\n"+
		"CANDIDATE,0.7,2.1,Kepler-7d\n")
	src := openSource(t, path)

	steps := collect(t, src)
	require.Len(t, steps, 2)

	require.NoError(t, steps[0].err)
	assert.Equal(t, "CONFIRMED", steps[0].record.String(models.FieldDisposition))
	assert.Equal(t, "0.5", steps[0].record.String(models.FieldInsolation))
	assert.Equal(t, "1.0", steps[0].record.String(models.FieldRadius))
	assert.Equal(t, "Kepler-42b", steps[0].record.String(models.FieldKeplerName))
	assert.Equal(t, 2, steps[0].record.Line)

	assert.Equal(t, "Kepler-7d", steps[1].record.String(models.FieldKeplerName))
	assert.Equal(t, 3, steps[1].record.Line)

	assert.Equal(t, []string{"koi_disposition", "koi_insol", "koi_prad", "kepler_name"}, src.Headers())
	assert.Equal(t, 2, src.RowsRead())
}

func TestCommentLinesSkippedEverywhere(t *testing.T) {
	path := testutil.WriteFile(t, "kepler_data.csv",
		"# This file was produced by the NASA Exoplanet Archive\n"+
			"# COLUMN koi_disposition: Exoplanet Archive Disposition\n"+
			testutil.KOIHeader+"\n"+
			"# between header and data\n"+
			"CONFIRMED,0.5,1.0,Kepler-42b\n"+
			"#,1,2,3,4,5,6 extra fields in a comment are fine\n"+
			"CONFIRMED,0.9,1.1,Kepler-62f\n"+
			"# trailing comment\n")
	src := openSource(t, path)

	steps := collect(t, src)
	require.Len(t, steps, 2)
	for _, s := range steps {
		assert.NoError(t, s.err)
	}
	assert.Equal(t, "Kepler-42b", steps[0].record.String(models.FieldKeplerName))
	assert.Equal(t, "Kepler-62f", steps[1].record.String(models.FieldKeplerName))
	assert.Equal(t, 5, steps[0].record.Line)
	assert.Equal(t, 7, steps[1].record.Line)
}

func TestDecodeErrorsAreResumable(t *testing.T) {
	path := testutil.WriteFile(t, "kepler_data.csv", testutil.KOIHeader+"\n"+
		"CONFIRMED,0.5,1.0,Kepler-42b\n"+
		"CONFIRMED,0.5,Kepler-short\n"+
		"CONFIRMED,0.5,1.0,Kep\"ler-1b\n"+
		"CONFIRMED,0.6,1.2,Kepler-1229b\n")
	src := openSource(t, path)

	steps := collect(t, src)
	require.Len(t, steps, 4)

	assert.NoError(t, steps[0].err)

	require.Error(t, steps[1].err)
	assert.Nil(t, steps[1].record)
	assert.True(t, errors.IsType(steps[1].err, errors.ErrorTypeDecode))
	var decodeErr *errors.Error
	require.ErrorAs(t, steps[1].err, &decodeErr)
	line, _ := decodeErr.Detail("line")
	assert.Equal(t, 3, line)

	require.Error(t, steps[2].err)
	assert.True(t, errors.IsType(steps[2].err, errors.ErrorTypeDecode))

	require.NoError(t, steps[3].err)
	assert.Equal(t, "Kepler-1229b", steps[3].record.String(models.FieldKeplerName))
	assert.Equal(t, 2, src.RowsRead())
}

func TestEmptyFile(t *testing.T) {
	src := openSource(t, testutil.WriteFile(t, "kepler_data.csv", ""))

	assert.Empty(t, collect(t, src))
	assert.Nil(t, src.Headers())
}

func TestHeaderOnly(t *testing.T) {
	src := openSource(t, testutil.WriteFile(t, "kepler_data.csv", "# comment\n"+testutil.KOIHeader+"\n"))

	assert.Empty(t, collect(t, src))
	assert.Len(t, src.Headers(), 4)
}

func TestMalformedHeaderEndsScan(t *testing.T) {
	src := openSource(t, testutil.WriteFile(t, "kepler_data.csv",
		"koi_disposition,\"koi_insol\"x,koi_prad\nCONFIRMED,0.5,1.0\n"))

	steps := collect(t, src)
	require.Len(t, steps, 1)
	assert.True(t, errors.IsType(steps[0].err, errors.ErrorTypeDecode))
}

func TestByteOrderMarkStripped(t *testing.T) {
	src := openSource(t, testutil.WriteFile(t, "kepler_data.csv",
		"\ufeff"+testutil.KOIHeader+"\nCONFIRMED,0.5,1.0,Kepler-42b\n"))

	steps := collect(t, src)
	require.Len(t, steps, 1)
	assert.Equal(t, "CONFIRMED", steps[0].record.String(models.FieldDisposition))
}

func TestGzipInput(t *testing.T) {
	path := testutil.WriteGzipFile(t, "kepler_data.csv", "# gz\n"+testutil.KOIHeader+"\n"+
		"CONFIRMED,0.5,1.0,Kepler-42b\n")
	src := openSource(t, path)

	steps := collect(t, src)
	require.Len(t, steps, 1)
	require.NoError(t, steps[0].err)
	assert.Equal(t, "Kepler-42b", steps[0].record.String(models.FieldKeplerName))
}

func TestCorruptGzipIsFileAccessError(t *testing.T) {
	path := testutil.WriteFile(t, "kepler_data.csv", "\x1f\x8bnot really gzip")
	src := NewCSVSource(path, nil)

	err := src.Open()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFileAccess))
}

func TestNotRestartable(t *testing.T) {
	src := openSource(t, testutil.WriteFile(t, "kepler_data.csv", testutil.KOIHeader+"\nCONFIRMED,0.5,1.0,Kepler-42b\n"))

	require.Len(t, collect(t, src), 1)
	assert.Empty(t, collect(t, src))

	_, err := src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBreakClosesSource(t *testing.T) {
	src := openSource(t, testutil.WriteFile(t, "kepler_data.csv", testutil.KOIHeader+"\n"+
		"CONFIRMED,0.5,1.0,a\nCONFIRMED,0.5,1.0,b\nCONFIRMED,0.5,1.0,c\n"))

	for range src.Records() {
		break
	}

	assert.Nil(t, src.file)
	assert.NoError(t, src.Close())
}
