package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cygel-ai/planetary/types"
)

// taskRecord is the GORM row model. The full task is stored as a JSON blob
// with status and type broken out into indexed columns for filtering.
type taskRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Type      string `gorm:"size:64;index"`
	Status    string `gorm:"size:32;index"`
	Data      []byte `gorm:"type:blob"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (taskRecord) TableName() string { return "tasks" }

// GormStore is a SQLite-backed TaskStore for single-node deployments that
// need task state to survive restarts.
type GormStore struct {
	db *gorm.DB

	// mu serializes read-modify-write updates within this process.
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) a SQLite database at dsn and migrates
// the task table.
func NewSQLiteStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate task table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func toRecord(task *types.Task) (*taskRecord, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	return &taskRecord{
		ID:        task.ID,
		Type:      task.Type,
		Status:    string(task.Status),
		Data:      data,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}, nil
}

func fromRecord(rec *taskRecord) (*types.Task, error) {
	var task types.Task
	if err := json.Unmarshal(rec.Data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", rec.ID, err)
	}
	return &task, nil
}

// SaveTask persists a task record.
func (s *GormStore) SaveTask(ctx context.Context, task *types.Task) error {
	if task == nil || task.ID == "" {
		return ErrInvalidInput
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()

	rec, err := toRecord(task)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(rec).Error
}

// GetTask retrieves a task by ID.
func (s *GormStore) GetTask(ctx context.Context, taskID string) (*types.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(&rec)
}

// UpdateTask applies mutate under the store's update lock.
func (s *GormStore) UpdateTask(ctx context.Context, taskID string, mutate func(*types.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := mutate(task); err != nil {
		return err
	}
	return s.SaveTask(ctx, task)
}

// ListTasks retrieves tasks matching the filter.
func (s *GormStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*types.Task, error) {
	query := s.db.WithContext(ctx).Model(&taskRecord{})
	if len(filter.Status) > 0 {
		statuses := make([]string, 0, len(filter.Status))
		for _, st := range filter.Status {
			statuses = append(statuses, string(st))
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var recs []taskRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}

	result := make([]*types.Task, 0, len(recs))
	for i := range recs {
		task, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		// Worker membership lives inside the JSON blob, so it is checked
		// after decoding.
		if filter.Matches(task) {
			result = append(result, task)
		}
	}
	return result, nil
}

// Stats returns per-status counts.
func (s *GormStore) Stats(ctx context.Context) (*Stats, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&taskRecord{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{StatusCounts: make(map[types.TaskStatus]int64)}
	for _, r := range rows {
		status := types.TaskStatus(r.Status)
		stats.Total += r.N
		stats.StatusCounts[status] = r.N
		if status.IsCompleted() {
			stats.CompletedTasks += r.N
		}
	}
	return stats, nil
}

// Ping checks backend health.
func (s *GormStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *GormStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

var _ TaskStore = (*GormStore)(nil)
