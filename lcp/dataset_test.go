package lcp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-georaster/raster"
)

const geographicWKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],` +
	`PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

const utmWKT = `PROJCS["NAD_1983_UTM_Zone_12N",GEOGCS["GCS_North_American_1983",` +
	`DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],` +
	`PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],` +
	`PARAMETER["Central_Meridian",-111.0],UNIT["Meter",1.0]]`

// sourceDataset builds an Int16 source where band b holds 100*b + pixel.
func sourceDataset(t *testing.T, bands, xsize, ysize int) *raster.MemDataset {
	t.Helper()
	ds := raster.NewMemDataset(xsize, ysize)
	for b := 1; b <= bands; b++ {
		data := make([]float64, xsize*ysize)
		for i := range data {
			data[i] = float64(100*b + i)
		}
		_, err := ds.AddBand(raster.Int16, data)
		require.NoError(t, err)
	}
	ds.SetGeoTransform(raster.NorthUp(-114, 47, 0.5, 0.5))
	ds.SetSpatialRef(raster.WKT(geographicWKT))
	ds.SetFileList([]string{"source.tif"})
	return ds
}

// projectedTransformer pretends every point lies at latitude lat.
type projectedTransformer struct{ lat float64 }

func (p projectedTransformer) ToGeographic(raster.SpatialRef, float64, float64) (float64, float64, error) {
	return 0, p.lat, nil
}

func TestCreateCopyRoundTrip(t *testing.T) {
	for _, bands := range []int{5, 7, 8, 10} {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.lcp")
		src := sourceDataset(t, bands, 4, 3)

		var progress []float64
		ds, err := CreateCopy(path, src,
			WithLogger(zerolog.Nop()),
			WithOptions(CreateOptions{LinearUnit: "METER"}),
			WithProgress(func(f float64, _ string) bool {
				progress = append(progress, f)
				return true
			}))
		require.NoError(t, err, "bands=%d", bands)

		w, h := ds.Size()
		assert.Equal(t, 4, w)
		assert.Equal(t, 3, h)
		require.Equal(t, bands, ds.BandCount())
		assert.Equal(t, []float64{0, 1.0 / 3, 2.0 / 3, 1, 1}, progress)

		for b := 1; b <= bands; b++ {
			band, err := ds.Band(b)
			require.NoError(t, err)
			row := make([]float64, 4)
			require.NoError(t, band.ReadRow(2, row))
			base := float64(100*b + 8)
			assert.Equal(t, []float64{base, base + 1, base + 2, base + 3}, row, "band %d", b)
		}

		gt, ok := ds.GeoTransform()
		require.True(t, ok)
		assert.Equal(t, raster.NorthUp(-114, 47, 0.5, 0.5), gt)

		md := ds.Metadata(raster.DefaultDomain)
		// Center is at 46.25, rounded to the nearest degree.
		assert.Equal(t, "46", md["LATITUDE"])
		assert.Equal(t, "Meters", md["LINEAR_UNIT"])
		assert.Equal(t, DefaultDescription, md["DESCRIPTION"])

		require.Len(t, ds.FileList(), 2)
		assert.Equal(t, filepath.Join(dir, "out.prj"), ds.FileList()[1])
		require.NotNil(t, ds.SpatialRef())
		assert.Equal(t, geographicWKT, ds.SpatialRef().WKT())

		require.NoError(t, ds.Close())
		require.NoError(t, ds.Close())
		_, err = ds.Band(1)
		assert.ErrorIs(t, err, raster.ErrClosed)
	}
}

func TestCreateCopyStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.lcp")
	src := sourceDataset(t, 5, 3, 2)

	ds, err := CreateCopy(path, src, WithLogger(zerolog.Nop()), WithOptions(CreateOptions{LinearUnit: "METER"}))
	require.NoError(t, err)
	defer ds.Close()

	band, err := ds.Band(4)
	require.NoError(t, err)
	md := band.Metadata()
	assert.Equal(t, "400", md["FUEL_MODEL_MIN"])
	assert.Equal(t, "405", md["FUEL_MODEL_MAX"])
	assert.Equal(t, "6", md["FUEL_MODEL_NUM_CLASSES"])
	assert.Equal(t, "400,401,402,403,404,405", md["FUEL_MODEL_VALUES"])
	assert.Equal(t, "0", md["FUEL_MODEL_OPTION"])
	assert.Equal(t, "source.tif", md["FUEL_MODEL_FILE"])
	assert.Equal(t, "Fuel models", band.Description())

	desc := ds.Header().Bands[0]
	require.NotNil(t, desc.Classes)
	assert.Equal(t, []int16{100, 101, 102, 103, 104, 105}, desc.Classes.Values)
}

func TestCreateCopyWithoutStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nostats.lcp")
	no := false
	ds, err := CreateCopy(path, sourceDataset(t, 5, 2, 2),
		WithLogger(zerolog.Nop()),
		WithOptions(CreateOptions{CalculateStats: &no, ClassifyData: &no, LinearUnit: "FEET"}))
	require.NoError(t, err)
	defer ds.Close()

	band, err := ds.Band(1)
	require.NoError(t, err)
	_, ok := band.Metadata()["ELEVATION_MIN"]
	assert.False(t, ok)
	assert.Equal(t, Feet, ds.Header().LinearUnit)
}

func TestCreateCopySourceFileMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.lcp")
	src := raster.NewMemDataset(2, 2)
	for b := 0; b < 5; b++ {
		mb, err := src.AddBand(raster.Int16, []float64{1, 2, 3, 4})
		require.NoError(t, err)
		if b == 2 {
			mb.SetMetadataItem("ASPECT_FILE", "aspect.asc")
		}
	}
	src.SetGeoTransform(raster.NorthUp(0, 10, 1, 1))
	src.SetFileList([]string{"stack.vrt"})

	lat := 40
	ds, err := CreateCopy(path, src,
		WithLogger(zerolog.Nop()),
		WithOptions(CreateOptions{Latitude: &lat, LinearUnit: "METER"}))
	require.NoError(t, err)
	defer ds.Close()

	h := ds.Header()
	assert.Equal(t, 40, h.Latitude)
	assert.Equal(t, "stack.vrt", h.Bands[0].SourceFile)
	assert.Equal(t, "aspect.asc", h.Bands[2].SourceFile)
	assert.Len(t, ds.FileList(), 1)
}

func TestCreateCopyLatitude(t *testing.T) {
	dir := t.TempDir()

	// No spatial reference and no LATITUDE fails in both modes.
	for _, strict := range []bool{false, true} {
		src := sourceDataset(t, 5, 2, 2)
		src.SetSpatialRef(nil)
		_, err := CreateCopy(filepath.Join(dir, "nolat.lcp"), src,
			WithLogger(zerolog.Nop()), WithStrict(strict))
		assert.ErrorIs(t, err, raster.ErrConfig)
	}
	_, err := os.Stat(filepath.Join(dir, "nolat.lcp"))
	assert.True(t, os.IsNotExist(err))

	// Projected systems need a transformer.
	src := sourceDataset(t, 5, 2, 2)
	src.SetSpatialRef(raster.WKT(utmWKT))
	_, err = CreateCopy(filepath.Join(dir, "utm.lcp"), src, WithLogger(zerolog.Nop()))
	assert.ErrorIs(t, err, raster.ErrConfig)

	ds, err := CreateCopy(filepath.Join(dir, "utm.lcp"), src,
		WithLogger(zerolog.Nop()), WithTransformer(projectedTransformer{lat: -33.6}))
	require.NoError(t, err)
	defer ds.Close()
	assert.Equal(t, -34, ds.Header().Latitude)
	assert.Equal(t, Meters, ds.Header().LinearUnit)
}

func TestCreateCopyLinearUnitStrict(t *testing.T) {
	dir := t.TempDir()
	src := sourceDataset(t, 5, 2, 2)

	// A geographic system has an angular unit with a scale other than 1.
	_, err := CreateCopy(filepath.Join(dir, "strict.lcp"), src,
		WithLogger(zerolog.Nop()), WithStrict(true))
	assert.ErrorIs(t, err, raster.ErrConfig)

	var logs bytes.Buffer
	ds, err := CreateCopy(filepath.Join(dir, "lenient.lcp"), src, WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	defer ds.Close()
	assert.Equal(t, Meters, ds.Header().LinearUnit)
	assert.Contains(t, logs.String(), "unit scale is not 1.0")
}

func TestCreateCopyDataTypeStrict(t *testing.T) {
	src := raster.NewMemDataset(1, 1)
	for b := 0; b < 5; b++ {
		_, err := src.AddBand(raster.Float32, []float64{1.6})
		require.NoError(t, err)
	}
	lat := 10
	opts := WithOptions(CreateOptions{Latitude: &lat, LinearUnit: "METER"})

	_, err := CreateCopy(filepath.Join(t.TempDir(), "f.lcp"), src, opts, WithStrict(true), WithLogger(zerolog.Nop()))
	assert.ErrorIs(t, err, raster.ErrConfig)

	ds, err := CreateCopy(filepath.Join(t.TempDir(), "f.lcp"), src, opts, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()
	band, err := ds.Band(1)
	require.NoError(t, err)
	row := make([]float64, 1)
	require.NoError(t, band.ReadRow(0, row))
	assert.Equal(t, 2.0, row[0])
}

func TestCreateCopyBandCount(t *testing.T) {
	_, err := CreateCopy(filepath.Join(t.TempDir(), "six.lcp"), sourceDataset(t, 6, 2, 2), WithLogger(zerolog.Nop()))
	assert.ErrorIs(t, err, raster.ErrConfig)
}

func TestCreateCopyCancelled(t *testing.T) {
	calls := 0
	_, err := CreateCopy(filepath.Join(t.TempDir(), "cancel.lcp"), sourceDataset(t, 5, 2, 4),
		WithLogger(zerolog.Nop()),
		WithOptions(CreateOptions{LinearUnit: "METER"}),
		WithProgress(func(float64, string) bool {
			calls++
			return calls < 3
		}))
	assert.ErrorIs(t, err, raster.ErrUserCancelled)
	assert.Equal(t, 3, calls)
}

func TestOpenCompressed(t *testing.T) {
	for _, ext := range []string{".lcp.gz", ".lcp.zst"} {
		dir := t.TempDir()
		path := filepath.Join(dir, "packed"+ext)
		ds, err := CreateCopy(path, sourceDataset(t, 8, 5, 4),
			WithLogger(zerolog.Nop()), WithOptions(CreateOptions{LinearUnit: "METER"}))
		require.NoError(t, err, ext)

		assert.Equal(t, filepath.Join(dir, "packed.prj"), ds.FileList()[1])
		band, err := ds.Band(8)
		require.NoError(t, err)
		row := make([]int16, 5)
		require.NoError(t, band.(*Band).ReadRowInt16(3, row))
		assert.Equal(t, []int16{815, 816, 817, 818, 819}, row)
		require.NoError(t, ds.Close())
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.lcp"))
	assert.ErrorIs(t, err, raster.ErrIO)

	junk := filepath.Join(dir, "junk.lcp")
	require.NoError(t, os.WriteFile(junk, bytes.Repeat([]byte{7}, HeaderSize), 0o644))
	_, err = Open(junk)
	assert.ErrorIs(t, err, raster.ErrFormat)

	buf, err := Encode(testHeader(false, false), EncodeOptions{})
	require.NoError(t, err)
	short := filepath.Join(dir, "short.lcp")
	require.NoError(t, os.WriteFile(short, buf[:1000], 0o644))
	_, err = Open(short)
	assert.ErrorIs(t, err, raster.ErrFormat)

	full := filepath.Join(dir, "full.lcp")
	require.NoError(t, os.WriteFile(full, buf, 0o644))
	_, err = Open(full, WithAccess(raster.Update))
	assert.ErrorIs(t, err, raster.ErrNotSupported)

	// The header promises pixel data the file does not have.
	ds, err := Open(full, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()
	band, err := ds.Band(1)
	require.NoError(t, err)
	assert.ErrorIs(t, band.ReadRow(0, make([]float64, 4)), raster.ErrIO)
	assert.ErrorIs(t, band.ReadRow(3, make([]float64, 4)), raster.ErrIO)
	_, err = ds.Band(6)
	assert.ErrorIs(t, err, raster.ErrBandIndex)
}

func TestOpenUppercaseProjection(t *testing.T) {
	dir := t.TempDir()
	buf, err := Encode(testHeader(false, false), EncodeOptions{})
	require.NoError(t, err)
	path := filepath.Join(dir, "upper.lcp")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upper.PRJ"), []byte(utmWKT+"\n"), 0o644))

	ds, err := Open(path, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer ds.Close()
	require.NotNil(t, ds.SpatialRef())
	assert.True(t, strings.HasPrefix(ds.SpatialRef().WKT(), "PROJCS"))
}
