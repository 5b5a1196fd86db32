package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"barterly/internal/imageprocessor"
	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/internal/storage"
	"barterly/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadLimits are byte caps per upload kind.
type UploadLimits struct {
	MaxMediaSize  int64
	MaxAvatarSize int64
	MaxProofSize  int64
	AvatarPixels  int
}

func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		MaxMediaSize:  10 << 20,
		MaxAvatarSize: 5 << 20,
		MaxProofSize:  10 << 20,
		AvatarPixels:  400,
	}
}

// StoredObject is an uploaded file that has not yet been referenced by a row.
type StoredObject struct {
	Key         string
	URL         string
	Name        string
	ContentType string
	Kind        models.ProofFileType
}

type UploadService interface {
	UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.ProfileResponse, error)

	UploadProof(ctx context.Context, db *gorm.DB, userID, title string, file *multipart.FileHeader) (*dto.ProofResponse, error)
	GetUserProofs(db *gorm.DB, userID string) ([]*dto.ProofResponse, error)
	DeleteProof(ctx context.Context, db *gorm.DB, userID, proofID string) error

	// StoreAttachment uploads a chat attachment; callers must RemoveObject
	// it if the message insert fails.
	StoreAttachment(ctx context.Context, userID, barterID string, file *multipart.FileHeader) (*StoredObject, error)
	RemoveObject(ctx context.Context, key string)

	Limits() UploadLimits
}

type uploadService struct {
	storage     storage.Storage
	processor   *imageprocessor.Processor
	profileRepo repositories.ProfileRepository
	proofRepo   repositories.ProofRepository
	ratingRepo  repositories.RatingRepository
	limits      UploadLimits
}

func NewUploadService(
	store storage.Storage,
	processor *imageprocessor.Processor,
	profileRepo repositories.ProfileRepository,
	proofRepo repositories.ProofRepository,
	ratingRepo repositories.RatingRepository,
	limits UploadLimits,
) UploadService {
	return &uploadService{
		storage:     store,
		processor:   processor,
		profileRepo: profileRepo,
		proofRepo:   proofRepo,
		ratingRepo:  ratingRepo,
		limits:      limits,
	}
}

func (s *uploadService) Limits() UploadLimits {
	return s.limits
}

// ---------------- Avatar ----------------

func (s *uploadService) UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.ProfileResponse, error) {
	if err := checkSize(file, s.limits.MaxAvatarSize); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer src.Close()

	reader, kind, _, err := sniff(file.Filename, src, nil)
	if err != nil {
		return nil, err
	}
	if kind != models.ProofFileImage {
		return nil, apperrors.ErrInvalidFileType.WithDetails("avatar must be an image")
	}

	img, err := s.processor.SquareAvatar(reader, s.limits.AvatarPixels)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrNotAnImage) {
			return nil, apperrors.ErrInvalidFileType.WithError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	key := storage.ObjectKey(storage.BucketAvatars, userID, uuid.NewString()+img.Extension)
	url, err := s.storage.Save(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}

	profile.AvatarURL = url
	if err := s.profileRepo.Update(db, profile); err != nil {
		s.RemoveObject(ctx, key)
		return nil, apperrors.DatabaseError(err)
	}

	summary, err := s.ratingRepo.Summary(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return toProfileResponse(profile, summary), nil
}

// ---------------- Proofs ----------------

func (s *uploadService) UploadProof(ctx context.Context, db *gorm.DB, userID, title string, file *multipart.FileHeader) (*dto.ProofResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ValidationError(map[string]string{"title": "This field is required"})
	}
	if err := checkSize(file, s.limits.MaxProofSize); err != nil {
		return nil, err
	}

	obj, err := s.store(ctx, storage.ObjectKey(storage.BucketCertificates, userID), file, proofDocumentTypes)
	if err != nil {
		return nil, err
	}

	proof := &models.Proof{
		UserID:   userID,
		Title:    title,
		FileURL:  obj.URL,
		FilePath: obj.Key,
		FileType: obj.Kind,
	}
	if err := s.proofRepo.Create(db, proof); err != nil {
		s.RemoveObject(ctx, obj.Key)
		return nil, apperrors.DatabaseError(err)
	}
	return toProofResponse(proof), nil
}

func (s *uploadService) GetUserProofs(db *gorm.DB, userID string) ([]*dto.ProofResponse, error) {
	proofs, err := s.proofRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	out := make([]*dto.ProofResponse, 0, len(proofs))
	for i := range proofs {
		out = append(out, toProofResponse(&proofs[i]))
	}
	return out, nil
}

func (s *uploadService) DeleteProof(ctx context.Context, db *gorm.DB, userID, proofID string) error {
	proof, err := s.proofRepo.FindByID(db, proofID)
	if err != nil {
		if errors.Is(err, repositories.ErrProofNotFound) {
			return apperrors.NewNotFoundError("proof", "Proof not found")
		}
		return apperrors.DatabaseError(err)
	}
	if proof.UserID != userID {
		return apperrors.NewForbiddenError("Only the owner can delete this proof")
	}
	if err := s.proofRepo.Delete(db, proofID); err != nil {
		return apperrors.DatabaseError(err)
	}
	if proof.FilePath != "" {
		s.RemoveObject(ctx, proof.FilePath)
	}
	return nil
}

// ---------------- Attachments ----------------

func (s *uploadService) StoreAttachment(ctx context.Context, userID, barterID string, file *multipart.FileHeader) (*StoredObject, error) {
	if err := checkSize(file, s.limits.MaxMediaSize); err != nil {
		return nil, err
	}
	return s.store(ctx, storage.ObjectKey(storage.BucketMessageAttachments, barterID, userID), file, attachmentDocumentTypes)
}

func (s *uploadService) RemoveObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWarn(ctx, "Failed to delete stored object", "key", key, "error", err)
	}
}

func (s *uploadService) store(ctx context.Context, prefix string, file *multipart.FileHeader, documents map[string]string) (*StoredObject, error) {
	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer src.Close()

	reader, kind, contentType, err := sniff(file.Filename, src, documents)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := prefix + "/" + uuid.NewString() + ext
	url, err := s.storage.Save(ctx, key, reader, contentType)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	return &StoredObject{
		Key:         key,
		URL:         url,
		Name:        filepath.Base(file.Filename),
		ContentType: contentType,
		Kind:        kind,
	}, nil
}

// ---------------- File checks ----------------

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Document formats accepted next to images, keyed by extension.
var (
	proofDocumentTypes = map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	attachmentDocumentTypes = map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".txt":  "text/plain",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
)

func checkSize(file *multipart.FileHeader, limit int64) error {
	if file == nil {
		return apperrors.ErrFileRequired
	}
	if limit > 0 && file.Size > limit {
		return apperrors.ErrFileTooLarge.WithDetails(map[string]int64{
			"size":     file.Size,
			"max_size": limit,
		})
	}
	return nil
}

// sniff classifies a file by its first bytes, falling back to the
// extension for the allowed document formats the sniffer cannot tell
// apart. A nil documents map accepts images only. The returned reader
// replays the consumed bytes.
func sniff(filename string, src io.Reader, documents map[string]string) (io.Reader, models.ProofFileType, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", "", apperrors.InternalError(err)
	}
	head = head[:n]
	reader := io.MultiReader(bytes.NewReader(head), src)

	detected := http.DetectContentType(head)
	mediaType := strings.TrimSpace(strings.Split(detected, ";")[0])
	if imageContentTypes[mediaType] {
		return reader, models.ProofFileImage, mediaType, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := documents[ext]; ok && documentMatches(ext, mediaType) {
		return reader, models.ProofFileDocument, contentType, nil
	}
	return nil, "", "", apperrors.ErrInvalidFileType.WithDetails(fmt.Sprintf("unsupported file type %s", mediaType))
}

func documentMatches(ext, sniffed string) bool {
	switch ext {
	case ".pdf":
		return sniffed == "application/pdf"
	case ".docx", ".xlsx":
		return sniffed == "application/zip"
	case ".txt":
		return sniffed == "text/plain"
	default:
		return sniffed == "application/octet-stream"
	}
}

func toProofResponse(p *models.Proof) *dto.ProofResponse {
	return &dto.ProofResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		FileURL:   p.FileURL,
		FileType:  string(p.FileType),
		CreatedAt: p.CreatedAt,
	}
}
