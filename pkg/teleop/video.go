package teleop

import (
	"context"
	"time"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

// FrameSink receives one decoded video frame per call. Display is a pure
// side effect owned by the caller; the controller never inspects frames.
type FrameSink func(frame robot.VideoFrame)

// VideoService drains the frame queue and hands every frame to the sink.
type VideoService struct {
	frames  *queue.Queue[robot.VideoFrame]
	sink    FrameSink
	timeout time.Duration
	logger  customlog.Logger
}

// NewVideoService creates a video service.
func NewVideoService(frames *queue.Queue[robot.VideoFrame], sink FrameSink, timeout time.Duration, logger customlog.Logger) *VideoService {
	return &VideoService{
		frames:  frames,
		sink:    sink,
		timeout: timeout,
		logger:  logger,
	}
}

// Run forwards frames until the context is cancelled.
func (v *VideoService) Run(ctx context.Context) error {
	v.logger.Infof("video service started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, ok := v.frames.Receive(v.timeout)
		if !ok {
			continue
		}
		if v.sink != nil {
			v.sink(frame)
		}
	}
}
