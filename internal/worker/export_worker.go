package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ErrQueueFull is returned when the export queue cannot accept another task.
var ErrQueueFull = errors.New("export queue is full")

type exportTask struct {
	ID        string
	FileName  string
	CreatedAt time.Time
}

// ExportWorker writes booking snapshots to XLSX files in the background. Tasks
// go through a bounded channel; a full channel rejects the enqueue rather than
// blocking the request path.
type ExportWorker struct {
	bookings    domain.BookingRepository
	items       domain.ItemRepository
	users       domain.UserRepository
	exportsPath string
	retryPolicy RetryPolicy
	queue       chan exportTask
	logger      *zerolog.Logger
}

func NewExportWorker(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	exportsPath string,
	queueSize int,
	retry RetryPolicy,
	logger *zerolog.Logger,
) *ExportWorker {
	if queueSize <= 0 {
		queueSize = 100
	}

	return &ExportWorker{
		bookings:    bookings,
		items:       items,
		users:       users,
		exportsPath: exportsPath,
		retryPolicy: retry.normalized(),
		queue:       make(chan exportTask, queueSize),
		logger:      logger,
	}
}

// EnqueueBookingsExport schedules a full bookings export and returns the
// file name the export will land under.
func (w *ExportWorker) EnqueueBookingsExport(ctx context.Context) (string, error) {
	task := exportTask{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	task.FileName = fmt.Sprintf("bookings_%s_%s.xlsx", task.CreatedAt.UTC().Format("20060102T150405"), task.ID[:8])

	select {
	case w.queue <- task:
		return task.FileName, nil
	default:
		return "", ErrQueueFull
	}
}

// Start launches the consume loop; it returns when ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		}
	}
}

func (w *ExportWorker) processTask(ctx context.Context, task exportTask) {
	for attempt := 1; ; attempt++ {
		err := w.exportBookings(ctx, task.FileName)
		if err == nil {
			w.logger.Info().Str("task_id", task.ID).Str("file", task.FileName).Msg("bookings export completed")
			return
		}
		if attempt >= w.retryPolicy.MaxRetries {
			w.logger.Error().Err(err).Str("task_id", task.ID).Int("attempts", attempt).Msg("bookings export failed")
			return
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(err).Str("task_id", task.ID).Dur("retry_in", delay).Msg("bookings export attempt failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (w *ExportWorker) exportBookings(ctx context.Context, fileName string) error {
	bookings, err := w.bookings.GetAllBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	itemIDs := make([]int64, 0, len(bookings))
	userIDs := make([]int64, 0, len(bookings))
	seenItems := make(map[int64]bool)
	seenUsers := make(map[int64]bool)
	for _, b := range bookings {
		if !seenItems[b.ItemID] {
			seenItems[b.ItemID] = true
			itemIDs = append(itemIDs, b.ItemID)
		}
		if !seenUsers[b.BookerID] {
			seenUsers[b.BookerID] = true
			userIDs = append(userIDs, b.BookerID)
		}
	}
	items, err := w.items.GetItemsByIDs(ctx, itemIDs)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	users, err := w.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Item", "Booker", "Start", "End", "Status", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, b := range bookings {
		itemName := ""
		if item := items[b.ItemID]; item != nil {
			itemName = item.Name
		}
		bookerName := ""
		if user := users[b.BookerID]; user != nil {
			bookerName = user.Name
		}
		values := []interface{}{
			b.ID,
			itemName,
			bookerName,
			b.Start.UTC().Format(time.RFC3339),
			b.End.UTC().Format(time.RFC3339),
			b.Status,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	if err := os.MkdirAll(w.exportsPath, 0o755); err != nil {
		return fmt.Errorf("create exports dir: %w", err)
	}
	path := filepath.Join(w.exportsPath, fileName)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	return nil
}
