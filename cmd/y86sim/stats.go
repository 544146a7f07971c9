//go:build statsview

package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsAddr = "localhost:12600"

// launchStats serves runtime charts for the lifetime of the process.
func launchStats(w io.Writer) error {
	viewer.SetConfiguration(viewer.WithAddr(statsAddr))
	go statsview.New().Start()
	fmt.Fprintf(w, "stats server available at http://%s/debug/statsview\n", statsAddr)
	return nil
}
