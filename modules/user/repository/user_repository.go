package repository

import (
	"context"
	"database/sql"

	"github.com/HyunsDev/opize-calendar2notion-server/core/database"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/user/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type userRepository struct {
	db database.IDatabase
}

func NewUserRepository(db database.IDatabase) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns the user or nil when no row matches.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `
		SELECT id, name, email, google_id, google_access_token, google_refresh_token,
		       notion_access_token, notion_workspace_access_token, notion_database_id,
		       notion_props, is_connected, is_work, is_admin, user_time_zone,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user entity.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}
