package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/upload"
)

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission has not finished.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// Creator performs the create-image write; *query.Mutation satisfies it.
type Creator interface {
	Run(ctx context.Context, image gallery.NewImage) (gallery.Item, error)
}

// Submitter validates input, stores the file and creates the image record.
type Submitter struct {
	rules   Rules
	storer  upload.Storer
	creator Creator
	busy    atomic.Bool
}

// NewSubmitter wires the submit pipeline.
func NewSubmitter(rules Rules, storer upload.Storer, creator Creator) *Submitter {
	return &Submitter{rules: rules, storer: storer, creator: creator}
}

// Rules returns the validation limits in use.
func (s *Submitter) Rules() Rules {
	return s.rules
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	return s.busy.Load()
}

// Submit validates in and, only when it passes, stores the image and issues
// the create request. Validation failures return Errors without any network
// activity.
func (s *Submitter) Submit(ctx context.Context, in Input) (gallery.Item, error) {
	if err := s.rules.Validate(in); err != nil {
		return gallery.Item{}, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return gallery.Item{}, ErrSubmitInFlight
	}
	defer s.busy.Store(false)

	stored, err := s.storer.Store(ctx, *in.Image)
	if err != nil {
		return gallery.Item{}, fmt.Errorf("store image: %w", err)
	}
	if strings.TrimSpace(stored) == "" {
		return gallery.Item{}, fmt.Errorf("store image: %w", upload.ErrEmptyURL)
	}

	item, err := s.creator.Run(ctx, gallery.NewImage{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		URL:         stored,
	})
	if err != nil {
		return gallery.Item{}, fmt.Errorf("create image: %w", err)
	}
	return item, nil
}
