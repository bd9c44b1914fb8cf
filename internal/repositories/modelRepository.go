package repositories

import (
	"errors"

	"CryptoModelBot/internal/models"

	"gorm.io/gorm"
)

// ModelStore remembers which models have been seen. Update stores the unseen
// ones and returns them.
type ModelStore interface {
	Update(discovered []models.Model) ([]models.Model, error)
	FindAll() ([]models.Model, error)
}

var _ ModelStore = (*ModelRepository)(nil)

type ModelRepository struct {
	db *gorm.DB
}

// NewModelRepository creates a new instance of ModelRepository
func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// Create adds a new Model record to the database
func (r *ModelRepository) Create(model *models.Model) error {
	if model == nil {
		return errors.New("model cannot be nil")
	}
	return r.db.Create(model).Error
}

// FindByRepoID retrieves a Model by its upstream repository ID
func (r *ModelRepository) FindByRepoID(repoID int64) (*models.Model, error) {
	if repoID == 0 {
		return nil, errors.New("invalid repo id")
	}
	var model models.Model
	err := r.db.Where("repo_id = ?", repoID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &model, err
}

// FindAll retrieves all Model records
func (r *ModelRepository) FindAll() ([]models.Model, error) {
	var all []models.Model
	err := r.db.Order("repo_id ASC").Find(&all).Error
	return all, err
}

// Update inserts every model whose repo ID is not stored yet and returns the
// inserted ones. Models without a repo ID are ignored.
func (r *ModelRepository) Update(discovered []models.Model) ([]models.Model, error) {
	var fresh []models.Model

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range discovered {
			if m.RepoID == 0 {
				continue
			}

			var count int64
			if err := tx.Model(&models.Model{}).Where("repo_id = ?", m.RepoID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			m.ID = 0
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			fresh = append(fresh, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}
