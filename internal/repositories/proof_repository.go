package repositories

import (
	"errors"

	"barterly/internal/models"

	"gorm.io/gorm"
)

var ErrProofNotFound = errors.New("proof not found")

type ProofRepository interface {
	Create(db *gorm.DB, proof *models.Proof) error
	FindByID(db *gorm.DB, id string) (*models.Proof, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Proof, error)
	Delete(db *gorm.DB, id string) error
}

type ProofRepositoryImpl struct{}

func NewProofRepository() ProofRepository {
	return &ProofRepositoryImpl{}
}

func (r *ProofRepositoryImpl) Create(db *gorm.DB, proof *models.Proof) error {
	return db.Create(proof).Error
}

func (r *ProofRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Proof, error) {
	var proof models.Proof
	if err := db.First(&proof, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProofNotFound
		}
		return nil, err
	}
	return &proof, nil
}

func (r *ProofRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Proof, error) {
	var proofs []models.Proof
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&proofs).Error
	return proofs, err
}

func (r *ProofRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Proof{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProofNotFound
	}
	return nil
}
