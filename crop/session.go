package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// State of a review session.
type State int

const (
	AwaitingInput State = iota
	InputReceived
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting-input"
	case InputReceived:
		return "input-received"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrDone is returned by Click and Next once the queue is exhausted.
var ErrDone = errors.New("no more images")

// Session walks a queue of detected pages. Every click re-crops the current
// page and writes the crop, so the file on disk always reflects the latest
// click. Session is not safe for concurrent use.
type Session struct {
	queue        []string
	outDir       string
	defaultSplit float64

	index  int
	state  State
	split  float64
	source image.Image
	crop   image.Image
	saved  string
}

// NewSession prepares a session over queue writing crops to outDir. Call Load
// before the first Click.
func NewSession(queue []string, outDir string, defaultSplit float64) *Session {
	return &Session{
		queue:        append([]string(nil), queue...),
		outDir:       outDir,
		defaultSplit: defaultSplit,
	}
}

// Load opens the current image and applies the default split. An empty
// queue moves straight to Done. When the image cannot be read the session
// stays on it with no source, so the caller can report it and call Next.
func (s *Session) Load() error {
	if s.index >= len(s.queue) {
		s.finish()
		return nil
	}
	s.source, s.crop, s.saved = nil, nil, ""
	s.state = AwaitingInput
	img, err := imaging.Open(s.queue[s.index])
	if err != nil {
		return fmt.Errorf("open %s: %w", s.queue[s.index], err)
	}
	c, err := Apply(img, s.defaultSplit)
	if err != nil {
		return err
	}
	s.source = img
	s.crop = c
	s.split = s.defaultSplit
	return nil
}

// Click applies a split at normalized vertical position y, clamped to [0,1],
// and persists the crop.
func (s *Session) Click(y float64) error {
	if s.state == Done {
		return ErrDone
	}
	if s.source == nil {
		return errors.New("no image loaded")
	}
	if math.IsNaN(y) {
		return fmt.Errorf("invalid click position %v", y)
	}
	y = math.Max(0, math.Min(1, y))
	c, err := Apply(s.source, y)
	if err != nil {
		return err
	}
	path, err := Save(s.outDir, s.queue[s.index], c)
	if err != nil {
		return err
	}
	s.split = y
	s.crop = c
	s.saved = path
	s.state = InputReceived
	return nil
}

// Next advances to the following image, or to Done after the last one.
func (s *Session) Next() error {
	if s.state == Done {
		return ErrDone
	}
	s.index++
	return s.Load()
}

func (s *Session) finish() {
	s.state = Done
	s.source = nil
	s.crop = nil
	s.saved = ""
}

func (s *Session) State() State { return s.state }

// Index is the zero-based position of the current image in the queue.
func (s *Session) Index() int { return s.index }

func (s *Session) Len() int { return len(s.queue) }

// Current returns the path of the image under review, empty when Done.
func (s *Session) Current() string {
	if s.state == Done {
		return ""
	}
	return s.queue[s.index]
}

func (s *Session) Split() float64 { return s.split }

// Source is the full detected page, nil when Done.
func (s *Session) Source() image.Image { return s.source }

// Crop is the crop at the current split, nil when Done.
func (s *Session) Crop() image.Image { return s.crop }

// Saved is the path of the last persisted crop of the current image, empty
// until the first click.
func (s *Session) Saved() string { return s.saved }

// AcceptDefaults saves the default-split crop of every remaining image
// without waiting for clicks and returns the number of crops written.
// Unreadable images are skipped and reported in the joined error.
func (s *Session) AcceptDefaults() (int, error) {
	var saved int
	var errs []error
	for s.state != Done {
		if s.source != nil {
			if err := s.Click(s.defaultSplit); err != nil {
				errs = append(errs, err)
			} else {
				saved++
			}
		}
		if err := s.Next(); err != nil {
			errs = append(errs, err)
		}
	}
	return saved, errors.Join(errs...)
}
