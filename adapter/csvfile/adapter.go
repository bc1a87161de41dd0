package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/tasteboard/reviewserver"
)

// Adapter is the durable append-only review dataset: one CSV file with a
// Title,Date,Rating,Review header. Appends are serialized by a single
// writer lock and the row index ID is assigned inside the critical
// section, so concurrent appends never interleave, duplicate an ID or
// overwrite a row.
type Adapter struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

var header = []string{"Title", "Date", "Rating", "Review"}

func New(path string, options ...Option) (*Adapter, error) {
	a := &Adapter{
		path:   path,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	if err := a.ensureExists(); err != nil {
		return nil, err
	}

	return a, nil
}

const adapterName = "csvfile"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) ensureExists() error {
	_, err := os.Stat(a.path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	a.logger.Sugar().With("path", a.path).Info("dataset file does not exist, creating an empty one")

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing dataset header: %w", err)
	}
	w.Flush()

	return w.Error()
}

// Append writes the review as a new row and assigns its ID, the 0-based
// row index. The file is re-counted under the lock so an ID is always one
// greater than the current maximum.
func (a *Adapter) Append(ctx context.Context, review *reviewserver.Review) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("reading dataset file: %w", err)
	}
	if len(rows) == 0 {
		if err := writeRow(f, header); err != nil {
			return err
		}
		rows = [][]string{header}
	}

	// If the file does not end with a newline the new row would be glued
	// onto the last one.
	if err := ensureTrailingNewline(f); err != nil {
		return err
	}

	review.ID = reviewserver.ReviewID(len(rows) - 1)

	if err := writeRow(f, []string{
		review.Title,
		review.Date,
		strconv.FormatFloat(review.Rating, 'f', -1, 64),
		review.Content,
	}); err != nil {
		return err
	}

	a.logger.Sugar().With("id", review.ID).Info("appended review to dataset")

	return nil
}

func writeRow(f *os.File, row []string) error {
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing dataset row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func ensureTrailingNewline(f *os.File) error {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return err
	}
	if last[0] != '\n' {
		if _, err := f.Write([]byte("\n")); err != nil {
			return err
		}
	}

	return nil
}

// ReadAll parses the whole dataset. Row indexes become review IDs.
func (a *Adapter) ReadAll(ctx context.Context) ([]*reviewserver.Review, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	reviews := make([]*reviewserver.Review, 0, len(rows)-1)
	for i, row := range rows[1:] {
		aReview, err := parseRow(i, row)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, aReview)
	}

	return reviews, nil
}

func parseRow(index int, row []string) (*reviewserver.Review, error) {
	if len(row) != len(header) {
		return nil, fmt.Errorf("dataset row %d: expected %d columns, got %d", index, len(header), len(row))
	}

	rating, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return nil, fmt.Errorf("dataset row %d: invalid rating: %w", index, err)
	}

	return &reviewserver.Review{
		ID:      reviewserver.ReviewID(index),
		Title:   row[0],
		Date:    row[1],
		Rating:  rating,
		Content: row[3],
		Status:  reviewserver.ReviewStatusPending,
	}, nil
}
