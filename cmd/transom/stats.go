// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/sirupsen/logrus"
)

// startStats serves Go runtime statistics over HTTP for development.
// The returned func stops the collector; with an empty addr nothing
// is started.
func startStats(addr string, log *logrus.Logger) func() {
	if addr == "" {
		return func() {}
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil {
			log.WithError(err).Warn("statsview stopped")
		}
	}()
	log.WithField("addr", addr).Info("statsview listening")
	return mgr.Stop
}
