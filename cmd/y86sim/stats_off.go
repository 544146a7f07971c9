//go:build !statsview

package main

import (
	"errors"
	"io"
)

func launchStats(io.Writer) error {
	return errors.New("statsview not available: rebuild with -tags statsview")
}
