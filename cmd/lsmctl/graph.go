package main

import (
	"fmt"
	"time"

	lsm "github.com/devlibx/lsmgo"
	"github.com/guptarohit/asciigraph"
)

// graphSamples and graphInterval bound how long `stats --graph` polls
// before rendering: 20 samples at 200ms gives a 4-second window, enough
// to see a flush cycle on a lightly loaded data directory without
// making the command hang indefinitely.
const (
	graphSamples  = 20
	graphInterval = 200 * time.Millisecond
)

func printMemtableGraph(db *lsm.DB) {
	samples := make([]float64, 0, graphSamples)
	for i := 0; i < graphSamples; i++ {
		samples = append(samples, float64(db.Stats().MemtableBytes))
		time.Sleep(graphInterval)
	}
	fmt.Println(asciigraph.Plot(samples, asciigraph.Height(10), asciigraph.Caption("memtable bytes")))
}
