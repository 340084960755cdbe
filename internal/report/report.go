// Package report writes predicted labels and the evaluation summary.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-sod/clamp/internal/metrics"
)

func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Writer buffers its output; call Flush when done.
type Writer struct {
	w *bufio.Writer
}

// Prediction writes one label per line.
func (w *Writer) Prediction(label int) error {
	buf := strconv.AppendInt(make([]byte, 0, 8), int64(label), 10)
	buf = append(buf, '\n')
	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("write prediction: %w", err)
	}
	return nil
}

// Summary writes the tab separated evaluation report.
func (w *Writer) Summary(s metrics.Summary) error {
	lines := [][2]string{{"Accuracy", s.Accuracy.String()}}
	if s.Mode == metrics.ModeBinary {
		lines = append(lines,
			[2]string{"Precision", s.Precision.String()},
			[2]string{"Recall", s.Recall.String()},
			[2]string{"F1", s.F1.String()},
		)
	}
	lines = append(lines,
		[2]string{"Elapsed_Time", seconds(s.State.Elapsed)},
		[2]string{"IndexTime", seconds(s.State.IndexTime)},
		[2]string{"TrainingTime", seconds(s.State.TrainTime)},
		[2]string{"TestingTime", seconds(s.State.PredictTime)},
	)
	if s.State.Global > 0 {
		lines = append(lines, [2]string{"GlobalCount", strconv.Itoa(s.State.Global)})
	} else {
		lines = append(lines,
			[2]string{"LazyCount", strconv.Itoa(s.State.Lazy)},
			[2]string{"EagerCount", strconv.Itoa(s.State.Eager)},
		)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w.w, "%s\t%s\n", l[0], l[1]); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
