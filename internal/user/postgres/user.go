package postgres

import (
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/Ngechemoris1/payup/internal/core/datamodel/user"
	userpkg "github.com/Ngechemoris1/payup/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*userpkg.User, error) {
	var u userDatamodel.User
	if err := r.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userpkg.ErrNotFound
		}
		return nil, err
	}
	return userpkg.FromDataModel(&u), nil
}

func (r *Repository) GetPermissions(userID int64) ([]string, error) {
	query := `SELECT p.name
	         FROM permissions p
	         JOIN user_permissions up ON p.id = up.permission_id
	         WHERE up.user_id = ?`

	rows, err := r.db.Raw(query, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		permissions = append(permissions, name)
	}
	return permissions, nil
}
