package harness

import (
	"context"
	"time"
)

// BandwidthSample is one diagnostic reading from the continuous bandwidth
// stream: the trial's duration and the bit rate derived from it.
type BandwidthSample struct {
	Duration time.Duration
	Mbps     float64
	Bytes    int64
}

// StreamBandwidth runs single-flow trials back to back forever and emits one
// sample per trial on the returned channel. The stream carries no assertion;
// it exists for interactive observation of sustained throughput.
//
// The sequence is lazy and cancellable: the goroutine stops and the channel
// closes when the context is cancelled or a trial fails. There is no other
// termination condition.
func (r *Runner) StreamBandwidth(ctx context.Context, port int) <-chan BandwidthSample {
	samples := make(chan BandwidthSample)

	go func() {
		defer close(samples)
		for {
			result, err := r.Sample(ctx, port)
			if err != nil {
				r.logger.Warn("bandwidth trial failed, stopping stream", "port", port, "error", err)
				return
			}
			sample := BandwidthSample{
				Duration: result.Duration,
				Mbps:     result.Mbps(),
				Bytes:    result.Bytes,
			}
			select {
			case samples <- sample:
			case <-ctx.Done():
				return
			}
		}
	}()

	return samples
}
