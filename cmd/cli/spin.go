package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Spinner animates a progress indicator while a slow call runs. It
// writes to stderr so results on stdout stay clean for piping.
type Spinner struct {
	frames  []string
	message string
	writer  io.Writer

	mu      sync.Mutex
	running bool

	stop   sync.Once
	ticker *time.Ticker
	done   chan struct{}
}

func NewSpinner() *Spinner {
	return &Spinner{
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		writer: os.Stderr,
		ticker: time.NewTicker(time.Millisecond * 90),
		done:   make(chan struct{}),
	}
}

func (s *Spinner) SetMessage(msg string) {
	msg = strings.TrimSpace(msg)
	msg = strings.TrimRight(msg, ".")
	s.message = msg
}

func (s *Spinner) Run(fn func()) {
	s.Start()
	defer s.Stop()
	fn()
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.run()
}

func (s *Spinner) Stop() {
	s.stop.Do(func() {
		close(s.done)
		s.ticker.Stop()
		s.clearLine()
	})
}

func (s *Spinner) run() {
	for i := 0; ; i++ {
		select {
		case <-s.ticker.C:
			frame := s.frames[i%len(s.frames)]
			if s.message != "" {
				fmt.Fprintf(s.writer, "\r%s %s...", frame, s.message)
			} else {
				fmt.Fprintf(s.writer, "\r%s", frame)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Spinner) clearLine() {
	io.WriteString(s.writer, "\x1b[0G\x1b[2K\x1b[0G")
}
