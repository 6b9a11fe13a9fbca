// Package buildinfo carries values stamped in at link time, e.g.
//
//	go build -ldflags "-X github.com/dmitrijs2005/authbridge/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the build stamp in a human-readable form.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}

// UserAgent identifies a component in outbound requests.
func UserAgent(component string) string {
	return component + "/" + Version
}
