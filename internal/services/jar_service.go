package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "satang/internal/errors"
	"satang/internal/models"
	"satang/internal/pagination"
)

// jarService handles jar CRUD. Balance mutation lives in the ledger
// service; this service never touches it except for the empty-jar check
// on delete.
type jarService struct {
	db *gorm.DB
}

// NewJarService creates a new JarServicer.
func NewJarService(db *gorm.DB) JarServicer {
	return &jarService{db: db}
}

// CreateJar creates a new jar with zero balance.
func (s *jarService) CreateJar(userID uint, name, color string, isPrimary bool) (*models.Jar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "jar name is required")
	}
	if color == "" {
		color = "#6b7280"
	}

	// One name per user
	var count int64
	if err := s.db.Model(&models.Jar{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateJarName
	}

	jar := &models.Jar{
		UserID:    userID,
		Name:      name,
		Color:     color,
		IsPrimary: isPrimary,
		Balance:   0,
	}
	if err := s.db.Create(jar).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return jar, nil
}

// GetUserJars lists a user's jars, primary first then newest first.
func (s *jarService) GetUserJars(userID uint) ([]models.Jar, error) {
	var jars []models.Jar
	if err := s.db.Where("user_id = ?", userID).
		Order("is_primary DESC, created_at DESC").
		Find(&jars).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return jars, nil
}

// GetJarByID retrieves a jar by ID for a specific user
func (s *jarService) GetJarByID(userID, jarID uint) (*models.Jar, error) {
	var jar models.Jar
	if err := s.db.Where("id = ? AND user_id = ?", jarID, userID).First(&jar).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrJarNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &jar, nil
}

// DeleteJar deletes a jar. Only an empty jar can be deleted; funds must
// be withdrawn to zero first so no money disappears with the jar.
func (s *jarService) DeleteJar(userID, jarID uint) error {
	jar, err := s.GetJarByID(userID, jarID)
	if err != nil {
		return err
	}
	if jar.Balance != 0 {
		return apperrors.ErrJarNotEmpty
	}
	if err := s.db.Delete(jar).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserTransfers retrieves the user's transfer audit trail, newest first.
func (s *jarService) GetUserTransfers(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.JarTransfer], error) {
	page.Defaults()

	base := s.db.Model(&models.JarTransfer{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transfers []models.JarTransfer
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&transfers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transfers, page.Page, page.PageSize, totalItems)
	return &result, nil
}
