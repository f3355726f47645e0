package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/casemover/pkg/models"
)

// ProgressFormatter renders a live progress bar over the batch and
// delegates the closing summary to the human formatter
type ProgressFormatter struct {
	mu    sync.Mutex
	bar   *pb.ProgressBar
	human *HumanFormatter
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{human: NewHumanFormatter()}
}

// Start prints the run banner and starts the bar
func (f *ProgressFormatter) Start(writer io.Writer, info StartInfo) error {
	if writer == nil {
		writer = os.Stdout
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.human.Start(writer, info); err != nil {
		return err
	}

	f.bar = pb.New(info.Matches)
	f.bar.SetWriter(writer)
	f.bar.Start()
	return nil
}

// Outcome advances the bar by one processed match
func (f *ProgressFormatter) Outcome(outcome models.MoveOutcome, current, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Increment()
	}
	return nil
}

// Complete stops the bar and displays the run summary
func (f *ProgressFormatter) Complete(summary *models.RunSummary) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	f.mu.Unlock()

	return f.human.Complete(summary)
}

// Error stops the bar and reports a fatal error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	f.mu.Unlock()

	return f.human.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
