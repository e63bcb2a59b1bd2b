package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/HyunsDev/opize-calendar2notion-server/core/database"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/core/params"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/entity"

	"github.com/google/uuid"
)

type ErrorLogRepository interface {
	FindPaged(ctx context.Context, p params.QueryParams, filter dto.ErrorLogFilter) ([]dto.ErrorLogResponse, int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	FindUnarchived(ctx context.Context, limit int) ([]entity.ErrorLog, error)
	MarkArchived(ctx context.Context, ids []uuid.UUID) error
}

type errorLogRepository struct {
	db database.IDatabase
}

func NewErrorLogRepository(db database.IDatabase) ErrorLogRepository {
	return &errorLogRepository{db: db}
}

type errorLogRow struct {
	entity.ErrorLog
	UserEmail       *string `db:"user_email"`
	UserIsConnected *bool   `db:"user_is_connected"`
}

// FindPaged lists error logs newest first, joined with their user, optionally
// narrowed by user id, error code, and the user's connection state.
func (r *errorLogRepository) FindPaged(ctx context.Context, p params.QueryParams, filter dto.ErrorLogFilter) ([]dto.ErrorLogResponse, int, error) {
	baseQuery := `
		FROM error_logs el
		LEFT JOIN users u ON u.id = el.user_id
	`

	var conditions []string
	var args []any
	argIndex := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("el.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Code != nil {
		conditions = append(conditions, fmt.Sprintf("el.code = $%d", argIndex))
		args = append(args, *filter.Code)
		argIndex++
	}
	if filter.IsUserConnected != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_connected = $%d", argIndex))
		args = append(args, *filter.IsUserConnected)
		argIndex++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		logger.Error("ErrorLogRepository:FindPaged:Count", "error", err)
		return nil, 0, err
	}

	offset := (p.PageNumber - 1) * p.PageSize
	listQuery := `
		SELECT el.id, el.user_id, el.code, el.error_from, el.description, el.detail,
		       el.level, el.archived, el.finish_work, el.created_at, el.updated_at,
		       u.email AS user_email, u.is_connected AS user_is_connected
	` + baseQuery + whereClause + fmt.Sprintf(`
		ORDER BY el.created_at DESC
		LIMIT $%d OFFSET $%d
	`, argIndex, argIndex+1)
	args = append(args, p.PageSize, offset)

	var rows []errorLogRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		logger.Error("ErrorLogRepository:FindPaged:Select", "error", err)
		return nil, 0, err
	}

	items := make([]dto.ErrorLogResponse, 0, len(rows))
	for _, row := range rows {
		item := dto.ErrorLogResponse{ErrorLog: row.ErrorLog}
		if row.UserID != nil && row.UserEmail != nil {
			item.User = &dto.ErrorLogUser{
				ID:          *row.UserID,
				Email:       *row.UserEmail,
				IsConnected: row.UserIsConnected != nil && *row.UserIsConnected,
			}
		}
		items = append(items, item)
	}

	return items, total, nil
}

// DeleteByID hard-deletes one error log, reporting whether a row existed.
func (r *errorLogRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.NamedExecContext(ctx, `
		DELETE FROM error_logs WHERE id = :id
	`, map[string]any{"id": id})
	if err != nil {
		logger.Error("ErrorLogRepository:DeleteByID", "error", err, "error_id", id)
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *errorLogRepository) FindUnarchived(ctx context.Context, limit int) ([]entity.ErrorLog, error) {
	query := `
		SELECT id, user_id, code, error_from, description, detail, level, archived,
		       finish_work, created_at, updated_at
		FROM error_logs
		WHERE archived = false
		ORDER BY created_at ASC
		LIMIT $1
	`
	var logs []entity.ErrorLog
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		logger.Error("ErrorLogRepository:FindUnarchived", "error", err)
		return nil, err
	}
	return logs, nil
}

func (r *errorLogRepository) MarkArchived(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `
		UPDATE error_logs
		SET archived = true, updated_at = NOW()
		WHERE id = ANY($1::uuid[])
	`
	if err := r.db.ExecContext(ctx, query, "{"+strings.Join(idStrings, ",")+"}"); err != nil {
		logger.Error("ErrorLogRepository:MarkArchived", "error", err, "count", len(ids))
		return err
	}
	return nil
}
