package utils

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Spinner initializes the process indicator.
type Spinner struct {
	w        io.Writer
	stopChan chan struct{}
	done     sync.WaitGroup
	progress atomic.Uint64
}

// NewSpinner instantiates a new Spinner struct writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w}
}

// SetProgress updates the completed fraction shown next to the spinner.
func (s *Spinner) SetProgress(p float64) {
	s.progress.Store(math.Float64bits(p))
}

// Start starts the process indicator.
func (s *Spinner) Start(message string) {
	s.stopChan = make(chan struct{}, 1)
	s.SetProgress(0)
	s.done.Add(1)

	go func() {
		defer s.done.Done()
		for {
			for _, r := range `-\|/` {
				select {
				case <-s.stopChan:
					return
				default:
					p := math.Float64frombits(s.progress.Load())
					fmt.Fprintf(s.w, "\r%s%s %c %3.0f%%%s", message, SuccessColor, r, p*100, DefaultColor)
					time.Sleep(time.Millisecond * 100)
				}
			}
		}
	}()
}

// Stop stops the process indicator.
func (s *Spinner) Stop() {
	s.stopChan <- struct{}{}
	s.done.Wait()
}
