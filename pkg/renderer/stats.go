package renderer

import "time"

// RenderStats contains statistics about a completed progressive pass
type RenderStats struct {
	Pass            int           // 1-based pass number within the current accumulation
	Frames          int           // Frames accumulated so far (equals Pass until the camera moves)
	TotalPixels     int           // Total number of pixels rendered
	SamplesPerPixel int           // Samples taken per pixel in this pass
	TotalSamples    int           // Samples taken across all accumulated frames
	AverageSamples  float64       // Average accumulated samples per pixel
	MeanLuminance   float64       // Average luminance of the displayed image
	Duration        time.Duration // Wall time spent in this pass
}

// newRenderStats builds the stats for a pass from the accumulator state
func newRenderStats(acc *Accumulator, pass int, duration time.Duration) RenderStats {
	totalPixels := acc.Width() * acc.Height()
	stats := RenderStats{
		Pass:            pass,
		Frames:          acc.Frames(),
		TotalPixels:     totalPixels,
		SamplesPerPixel: acc.samplesPerPixel,
		TotalSamples:    totalPixels * acc.samplesPerPixel * acc.Frames(),
		MeanLuminance:   acc.MeanLuminance(),
		Duration:        duration,
	}
	if totalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(totalPixels)
	}
	return stats
}
