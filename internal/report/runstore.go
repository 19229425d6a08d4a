package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// AnalysisRun 一次分析的持久化记录
type AnalysisRun struct {
	ID              uint      `gorm:"primaryKey"`
	Reference       string    `gorm:"index"`
	ProtocolName    string    `gorm:"index"`
	Category        string
	ComplexityScore float64
	SecurityRating  string
	FindingCount    int
	Enhanced        bool
	ReportPath      string
	ReportJSON      string
	CreatedAt       time.Time
}

type RunStore struct {
	db *gorm.DB
}

// NewRunStore 打开（必要时创建）SQLite 数据库并迁移表结构
func NewRunStore(dbPath string) (*RunStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	if err := db.AutoMigrate(&AnalysisRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate analysis_runs table: %w", err)
	}

	return &RunStore{db: db}, nil
}

// Record 记录一次完成的分析
func (s *RunStore) Record(reference string, report *ProtocolReport, reportPath string, enhanced bool) (*AnalysisRun, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	run := &AnalysisRun{
		Reference:       reference,
		ProtocolName:    report.Summary.Name,
		Category:        report.Summary.Category,
		ComplexityScore: report.Summary.ComplexityScore,
		SecurityRating:  report.Security.Rating,
		FindingCount:    len(report.Security.Findings),
		Enhanced:        enhanced,
		ReportPath:      reportPath,
		ReportJSON:      string(payload),
		CreatedAt:       report.Timestamp,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record analysis run: %w", err)
	}
	return run, nil
}

// Recent 返回最近的分析记录，最新的在前
func (s *RunStore) Recent(limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []AnalysisRun
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	return runs, nil
}

// FindByName 按协议名查最近一次记录
func (s *RunStore) FindByName(name string) (*AnalysisRun, error) {
	var run AnalysisRun
	err := s.db.Where("protocol_name = ?", name).Order("created_at DESC").First(&run).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find analysis run for %q: %w", name, err)
	}
	return &run, nil
}

func (s *RunStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
