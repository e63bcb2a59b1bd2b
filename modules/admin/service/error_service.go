package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HyunsDev/opize-calendar2notion-server/core/constants"
	coreDto "github.com/HyunsDev/opize-calendar2notion-server/core/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/core/params"
	"github.com/HyunsDev/opize-calendar2notion-server/core/storage"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/repository"

	"github.com/google/uuid"
)

type AdminErrorService interface {
	GetErrors(ctx context.Context, p params.QueryParams, filter dto.ErrorLogFilter) (*dto.PaginatedErrorLogs, *errors.AppError)
	DeleteError(ctx context.Context, errorID uuid.UUID) *errors.AppError
	ArchiveErrors(ctx context.Context) (*dto.ArchiveResponse, *errors.AppError)
}

type adminErrorService struct {
	repo     repository.ErrorLogRepository
	uploader storage.Uploader
}

func NewAdminErrorService(repo repository.ErrorLogRepository, uploader storage.Uploader) AdminErrorService {
	return &adminErrorService{repo: repo, uploader: uploader}
}

func (s *adminErrorService) GetErrors(ctx context.Context, p params.QueryParams, filter dto.ErrorLogFilter) (*dto.PaginatedErrorLogs, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	items, total, err := s.repo.FindPaged(ctx, p, filter)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get error logs", err)
	}

	return coreDto.NewPagination(items, total, p.PageNumber, p.PageSize), nil
}

func (s *adminErrorService) DeleteError(ctx context.Context, errorID uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	deleted, err := s.repo.DeleteByID(ctx, errorID)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "failed to delete error log", err)
	}
	if !deleted {
		return errors.NewAppError(errors.ErrErrorLogNotFound, "error log not found", nil)
	}
	return nil
}

// ArchiveErrors snapshots unarchived error logs to S3 and flags them
// archived. Rows are flagged only after the upload succeeded.
func (s *adminErrorService) ArchiveErrors(ctx context.Context) (*dto.ArchiveResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	logs, err := s.repo.FindUnarchived(ctx, constants.ErrorArchiveBatch)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load unarchived error logs", err)
	}
	if len(logs) == 0 {
		return &dto.ArchiveResponse{ArchivedCount: 0}, nil
	}

	body, err := json.Marshal(logs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to serialize error logs", err)
	}

	key := fmt.Sprintf("error-logs/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	location, err := s.uploader.PutJSON(ctx, key, body)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to upload archive", err)
	}

	ids := make([]uuid.UUID, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	if err := s.repo.MarkArchived(ctx, ids); err != nil {
		// snapshot exists but rows stayed unarchived; next run re-uploads them
		logger.Error("AdminErrorService:ArchiveErrors:MarkArchived:Error", "error", err, "location", location)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to mark error logs archived", err)
	}

	logger.Info("AdminErrorService:ArchiveErrors:Done", "count", len(logs), "location", location)
	return &dto.ArchiveResponse{ArchivedCount: len(logs), Location: location}, nil
}
