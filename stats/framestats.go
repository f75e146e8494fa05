package stats

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var ErrNoSamples = errors.New("no frame samples")

// FrameTimerData holds the phase timings of one rendered frame.
type FrameTimerData struct {
	NumFrame    uint64
	RenderStart time.Time
	RenderEnd   time.Time
	TasksStart  time.Time
	TasksEnd    time.Time
	FrameStart  time.Time
	FrameEnd    time.Time
}

// Summary averages a window of frames. Durations are in microseconds and
// rates in updates per second, truncated like the status bar shows them.
type Summary struct {
	FirstFrame uint64
	LastFrame  uint64
	Faces      int
	Vertices   int

	RenderTime    int64
	RenderUpdates int64
	TasksTime     int64
	TasksUpdates  int64
	FrameTime     int64
	FrameUpdates  int64
	AvgFramerate  int64
}

func micros(from, to time.Time) int64 {
	return to.Sub(from).Microseconds()
}

// rate is n updates over total microseconds, 0 when nothing was measured.
func rate(n int, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return int64(float64(n) * 1e6 / float64(total))
}

// Summarize folds samples, oldest first. faces and vertices are the counts
// currently submitted to the renderer.
func Summarize(samples []FrameTimerData, faces, vertices int) (Summary, error) {
	n := len(samples)
	if n == 0 {
		return Summary{}, ErrNoSamples
	}
	var sumRender, sumTasks, sumFrame, sumInterFrame int64
	for i, s := range samples {
		sumRender += micros(s.RenderStart, s.RenderEnd)
		sumTasks += micros(s.TasksStart, s.TasksEnd)
		sumFrame += micros(s.FrameStart, s.FrameEnd)
		if i > 0 {
			sumInterFrame += micros(samples[i-1].FrameEnd, s.FrameEnd)
		}
	}
	return Summary{
		FirstFrame:    samples[0].NumFrame,
		LastFrame:     samples[n-1].NumFrame,
		Faces:         faces,
		Vertices:      vertices,
		RenderTime:    sumRender / int64(n),
		RenderUpdates: rate(n, sumRender),
		TasksTime:     sumTasks / int64(n),
		TasksUpdates:  rate(n, sumTasks),
		FrameTime:     sumFrame / int64(n),
		FrameUpdates:  rate(n, sumFrame),
		AvgFramerate:  rate(n-1, sumInterFrame),
	}, nil
}

// Lines renders the summary as the editor's statistics panel text.
func (s Summary) Lines() []string {
	return []string{
		fmt.Sprintf("Frames #%d to #%d stats :", s.FirstFrame, s.LastFrame),
		fmt.Sprintf("Rendering %d faces and %d vertices", s.Faces, s.Vertices),
		fmt.Sprintf("Render: %d us (%d updates/s)", s.RenderTime, s.RenderUpdates),
		fmt.Sprintf("Tasks: %d us (%d updates/s)", s.TasksTime, s.TasksUpdates),
		fmt.Sprintf("Frame: %d us (%d updates/s)", s.FrameTime, s.FrameUpdates),
		fmt.Sprintf("Average framerate: %d fps", s.AvgFramerate),
	}
}
