package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
	"github.com/haulbridge/freight-tasks/internal/repository"
)

type RegisterGenerator interface {
	Generate(tasks []model.Task) ([]byte, error)
}

type DocumentGenerator interface {
	Generate(task model.Task, bids []model.Bid) ([]byte, error)
}

// ExportService produces the admin-facing documents: the task register
// workbook and per-task summary sheets.
type ExportService struct {
	tasks *repository.TaskRepository
	bids  *repository.BidRepository
	excel RegisterGenerator
	pdf   DocumentGenerator
}

func NewExportService(tasks *repository.TaskRepository, bids *repository.BidRepository, excel RegisterGenerator, pdf DocumentGenerator) *ExportService {
	return &ExportService{tasks: tasks, bids: bids, excel: excel, pdf: pdf}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ExportService) ExportRegister(ctx context.Context, principal model.Principal) (*ExportResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	tasks, err := s.tasks.ListAllWithBids(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(tasks)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("tasks-%s.xlsx", time.Now().Format("2006-01-02")),
		Content:  content,
	}, nil
}

func (s *ExportService) ExportTaskDocument(ctx context.Context, principal model.Principal, taskID uint) (*ExportResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	bids, err := s.bids.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*task, bids)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("task-%d.pdf", taskID),
		Content:  content,
	}, nil
}
