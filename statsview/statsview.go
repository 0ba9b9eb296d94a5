// Package statsview serves runtime statistics of the emulator over HTTP.
//
// After launch, graphs are available at localhost:12600/debug/statsview and
// the standard pprof handlers at localhost:12600/debug/pprof/.
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// Address the stats server listens on.
const Address = "localhost:12600"

const url = "/debug/statsview"

// URL returns the address of the statistics page.
func URL() string {
	return "http://" + Address + url
}

// Launch starts the stats server in a new goroutine.
func Launch(logger *log.Logger) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		mgr.Start()
	}()

	logger.Info("Stats server available", log.String("url", URL()))
}
