package modules

import (
	"emperror.dev/errors"
	"gorm.io/gorm"

	"github.com/priyxstudio/pub/internal/models"
)

// DatabaseStore keeps module data in the modules table.
type DatabaseStore struct {
	db *gorm.DB
}

var _ Store = (*DatabaseStore)(nil)

// NewDatabaseStore returns a store backed by db. The modules table must
// already be migrated.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// GetAll returns every stored module ordered by name. A record that can't be
// decoded fails the whole call.
func (s *DatabaseStore) GetAll() ([]ModuleData, error) {
	var rows []models.Module
	if err := s.db.Order("name").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query module records")
	}
	out := make([]ModuleData, 0, len(rows))
	for _, row := range rows {
		data, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *DatabaseStore) Get(name string) (ModuleData, error) {
	row, err := s.find(s.db, name)
	if err != nil {
		return ModuleData{}, err
	}
	return decodeRow(*row)
}

func (s *DatabaseStore) Add(data ModuleData) error {
	encoded, err := data.Encode()
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if exists, err := s.exists(tx, data.Name()); err != nil {
			return err
		} else if exists {
			return moduleExists(data.Name())
		}
		row := models.Module{Name: data.Name(), Data: string(encoded)}
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "failed to create module record")
		}
		return nil
	})
}

// Update replaces the record stored under name. When the data carries a new
// name the record is moved to it.
func (s *DatabaseStore) Update(name string, data ModuleData) error {
	encoded, err := data.Encode()
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		row, err := s.find(tx, name)
		if err != nil {
			return err
		}
		if data.Name() != name {
			if exists, err := s.exists(tx, data.Name()); err != nil {
				return err
			} else if exists {
				return moduleExists(data.Name())
			}
		}
		row.Name = data.Name()
		row.Data = string(encoded)
		if err := tx.Save(row).Error; err != nil {
			return errors.Wrap(err, "failed to update module record")
		}
		return nil
	})
}

func (s *DatabaseStore) Delete(name string) error {
	res := s.db.Where("name = ?", name).Delete(&models.Module{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete module record")
	}
	if res.RowsAffected == 0 {
		return moduleNotFound(name)
	}
	return nil
}

func (s *DatabaseStore) Exists(name string) (bool, error) {
	return s.exists(s.db, name)
}

func (s *DatabaseStore) DeleteAll() error {
	err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Module{}).Error
	return errors.Wrap(err, "failed to delete module records")
}

func (s *DatabaseStore) find(tx *gorm.DB, name string) (*models.Module, error) {
	var row models.Module
	if err := tx.Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, moduleNotFound(name)
		}
		return nil, errors.Wrap(err, "failed to query module record")
	}
	return &row, nil
}

func (s *DatabaseStore) exists(tx *gorm.DB, name string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Module{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to query module record")
	}
	return count > 0, nil
}

func decodeRow(row models.Module) (ModuleData, error) {
	data, err := DecodeModuleData([]byte(row.Data))
	if err != nil {
		return ModuleData{}, errors.WithDetails(err, "module", row.Name)
	}
	if data.Name() != row.Name {
		return ModuleData{}, errors.WithDetails(malformed("module name does not match its record"), "module", row.Name)
	}
	return data, nil
}
