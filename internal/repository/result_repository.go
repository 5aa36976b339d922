package repository

import (
	"context"
	"errors"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// ResultRepository 已完成测评的历史记录
type ResultRepository interface {
	Create(ctx context.Context, record *model.AssessmentResultRecord) error
	// List assessmentID 为空时返回全部，按完成时间倒序
	List(ctx context.Context, assessmentID string) ([]model.AssessmentResultRecord, error)
	FindByID(ctx context.Context, id string) (*model.AssessmentResultRecord, error)
	// CountAttempts 指定测评已有的提交次数
	CountAttempts(ctx context.Context, assessmentID string) (int, error)
}

type GormResultRepository struct {
	DB *gorm.DB
}

func NewGormResultRepository(db *gorm.DB) *GormResultRepository {
	return &GormResultRepository{DB: db}
}

func (r *GormResultRepository) Create(ctx context.Context, record *model.AssessmentResultRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

func (r *GormResultRepository) List(ctx context.Context, assessmentID string) ([]model.AssessmentResultRecord, error) {
	var records []model.AssessmentResultRecord
	query := r.DB.WithContext(ctx).Model(&model.AssessmentResultRecord{})
	if assessmentID != "" {
		query = query.Where("assessment_id = ?", assessmentID)
	}
	err := query.Order("completed_at desc").Find(&records).Error
	return records, err
}

func (r *GormResultRepository) FindByID(ctx context.Context, id string) (*model.AssessmentResultRecord, error) {
	var record model.AssessmentResultRecord
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormResultRepository) CountAttempts(ctx context.Context, assessmentID string) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AssessmentResultRecord{}).
		Where("assessment_id = ?", assessmentID).Count(&count).Error
	return int(count), err
}

// MemoryResultRepository 未配置数据库时使用，进程退出即丢失
type MemoryResultRepository struct {
	mu      sync.RWMutex
	records []model.AssessmentResultRecord
}

func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{}
}

func (r *MemoryResultRepository) Create(ctx context.Context, record *model.AssessmentResultRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == "" {
		record.ID = model.GenerateUUID()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.records = append(r.records, *record)
	return nil
}

func (r *MemoryResultRepository) List(ctx context.Context, assessmentID string) ([]model.AssessmentResultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.AssessmentResultRecord, 0, len(r.records))
	for _, rec := range r.records {
		if assessmentID == "" || rec.AssessmentID == assessmentID {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CompletedAt.After(result[j].CompletedAt)
	})
	return result, nil
}

func (r *MemoryResultRepository) FindByID(ctx context.Context, id string) (*model.AssessmentResultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			found := rec
			return &found, nil
		}
	}
	return nil, util.ErrResultNotFound
}

func (r *MemoryResultRepository) CountAttempts(ctx context.Context, assessmentID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rec := range r.records {
		if rec.AssessmentID == assessmentID {
			n++
		}
	}
	return n, nil
}
