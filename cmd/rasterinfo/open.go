package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/robert-malhotra/go-georaster/gif"
	"github.com/robert-malhotra/go-georaster/internal/vfs"
	"github.com/robert-malhotra/go-georaster/lcp"
	"github.com/robert-malhotra/go-georaster/raster"
)

// opened is a dataset together with the name of its driver.
type opened struct {
	raster.Dataset
	driver string
}

// openDataset picks the driver from the leading bytes of path.
func openDataset(path string) (opened, error) {
	f, err := vfs.Open(path)
	if err != nil {
		return opened{}, fmt.Errorf("%w: opening %s: %w", raster.ErrIO, path, err)
	}
	head := make([]byte, lcp.IdentifyBytes)
	n, err := f.ReadAt(head, 0)
	f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return opened{}, fmt.Errorf("%w: reading %s: %w", raster.ErrIO, path, err)
	}
	head = head[:n]

	switch {
	case gif.Identify(head):
		ds, err := gif.Open(path, gif.WithLogger(log.Logger))
		if err != nil {
			return opened{}, err
		}
		return opened{ds, "GIF"}, nil
	case lcp.Identify(head, path):
		ds, err := lcp.Open(path, lcp.WithLogger(log.Logger))
		if err != nil {
			return opened{}, err
		}
		return opened{ds, "LCP"}, nil
	}
	return opened{}, fmt.Errorf("%w: %s is not a recognized raster", raster.ErrFormat, path)
}
