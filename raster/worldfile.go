package raster

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadWorldFile parses an ESRI world file. The six values are the pixel
// width, the two rotation terms, the pixel height and the centre of the
// top-left pixel; the returned transform refers to the pixel corner.
func ReadWorldFile(path string) (GeoTransform, error) {
	f, err := os.Open(path)
	if err != nil {
		return GeoTransform{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	var v []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(v) < 6 {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		x, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return GeoTransform{}, fmt.Errorf("%w: world file %s: %w", ErrFormat, path, err)
		}
		v = append(v, x)
	}
	if err := sc.Err(); err != nil {
		return GeoTransform{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(v) < 6 {
		return GeoTransform{}, fmt.Errorf("%w: world file %s has %d values", ErrFormat, path, len(v))
	}
	if v[0] == 0 || v[3] == 0 {
		return GeoTransform{}, fmt.Errorf("%w: world file %s has a zero pixel size", ErrFormat, path)
	}
	return GeoTransform{
		v[4] - 0.5*v[0] - 0.5*v[2],
		v[0],
		v[2],
		v[5] - 0.5*v[1] - 0.5*v[3],
		v[1],
		v[3],
	}, nil
}

// FindWorldFile looks for a world file next to dataset path, trying in turn
// the abbreviated extension (".gfw" for ".gif"), the extension with a
// trailing "w" and ".wld", in lower then upper case.
func FindWorldFile(path string) (string, GeoTransform, bool) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	ext = strings.TrimPrefix(ext, ".")

	var candidates []string
	if len(ext) >= 2 {
		candidates = append(candidates, ext[:1]+ext[len(ext)-1:]+"w")
	}
	if ext != "" {
		candidates = append(candidates, ext+"w")
	}
	candidates = append(candidates, "wld")

	for _, c := range candidates {
		for _, variant := range []string{strings.ToLower(c), strings.ToUpper(c)} {
			p := base + "." + variant
			if _, err := os.Stat(p); err != nil {
				continue
			}
			gt, err := ReadWorldFile(p)
			if err != nil {
				continue
			}
			return p, gt, true
		}
	}
	return "", GeoTransform{}, false
}
