// Package otglog is a thin, package-local wrapper around go.uber.org/zap,
// the structured logger used by the rdk-family robotics repos in the
// retrieval pack (see manifests/daoran-rdk, manifests/AdamMagaluk-rdk).
// The trajectory kernel itself never logs (it is a pure, single-threaded
// tick function); this package exists for the orchestrator and hardware
// transport layers, which do own I/O and lifecycle events worth
// recording.
package otglog

import "go.uber.org/zap"

// New builds a development-mode *zap.Logger: readable console output,
// debug level enabled, stack traces on warnings and above. Production
// deployments should construct their own zap.Config instead; this
// default is for the CLI demo and test harnesses in this repository.
func New() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		// zap.NewDevelopment only fails on a broken encoder config,
		// which cannot happen with the zero-value defaults used here.
		panic(err)
	}
	return logger
}

// Nop returns a logger that discards everything, for tests and library
// callers that supply their own.
func Nop() *zap.Logger {
	return zap.NewNop()
}
