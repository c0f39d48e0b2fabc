// Package common provides logging infrastructure shared by the knowledge-graph
// mapping layer and its surrounding services. Built on logrus, it routes error-level
// output to stderr and everything else to stdout so containerized deployments can
// treat the two streams differently.
package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes logrus output to stderr for error-level entries and
// stdout otherwise, based on a simple "level=error" substring check against
// the formatted line.
type OutputSplitter struct{}

// Write implements io.Writer, splitting formatted log lines between stdout
// and stderr.
func (splitter *OutputSplitter) Write(p []byte) (n int, err error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the package-wide logrus instance, pre-configured with
// OutputSplitter. Services that don't need a dedicated logger via
// NewLogger/ServiceLogger use this one directly.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
}
