package ioextract

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

// newProgressBar creates a new progress bar with consistent
// settings. Hidden bars still count, they just print nothing.
func newProgressBar(
	total int,
	prefix string,
	show bool,
) *pb.ProgressBar {
	bar := pb.Full.New(total)
	if !show {
		bar.SetWriter(io.Discard)
	}
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar.Start()
}
