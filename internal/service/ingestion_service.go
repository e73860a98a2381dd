package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"keiriflow/internal/models"
	"keiriflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngestionService accepts chat uploads: it stores the file on disk,
// ensures the owning chat session exists and registers a pending
// ChatFile for the pipeline to pick up.
type IngestionService struct {
	sessionRepo *repository.ChatSessionRepository
	fileRepo    *repository.ChatFileRepository
	uploadDir   string
	logger      *zap.Logger
}

func NewIngestionService(
	sessionRepo *repository.ChatSessionRepository,
	fileRepo *repository.ChatFileRepository,
	uploadDir string,
	logger *zap.Logger,
) *IngestionService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &IngestionService{
		sessionRepo: sessionRepo,
		fileRepo:    fileRepo,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

// EnsureSession finds the chat session for an external conversation id,
// creating it on first contact.
func (s *IngestionService) EnsureSession(ctx context.Context, tenantID, userID uuid.UUID, difyID, title string) (*models.ChatSession, error) {
	if difyID != "" {
		if session, err := s.sessionRepo.GetByDifyID(ctx, tenantID, difyID); err == nil {
			return session, nil
		}
	}

	now := time.Now()
	session := &models.ChatSession{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		DifyID:    difyID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.Title == "" {
		session.Title = "アップロード " + now.Format("2006/01/02 15:04")
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

// UploadFile stores the document and registers it as pending. The file
// on disk is named by its id so collisions are impossible.
func (s *IngestionService) UploadFile(ctx context.Context, tenantID uuid.UUID, session *models.ChatSession, file io.Reader, fileName, mimeType string) (*models.ChatFile, error) {
	fileID := uuid.New()
	ext := filepath.Ext(fileName)
	newFileName := fileID.String() + ext
	filePath := filepath.Join(s.uploadDir, newFileName)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	fileSize, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	now := time.Now()
	chatFile := &models.ChatFile{
		ID:            fileID,
		TenantID:      tenantID,
		ChatSessionID: session.ID,
		DifyID:        session.DifyID,
		FileName:      fileName,
		FileURL:       "/uploads/" + newFileName,
		FileSize:      fileSize,
		MimeType:      mimeType,
		Status:        models.FileStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.fileRepo.Create(ctx, chatFile); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.logger.Info("File uploaded",
		zap.String("file_id", fileID.String()),
		zap.String("file_name", fileName),
		zap.Int64("size", fileSize),
	)
	return chatFile, nil
}

// ReadFile loads the stored bytes for a registered upload.
func (s *IngestionService) ReadFile(f *models.ChatFile) ([]byte, error) {
	path := filepath.Join(s.uploadDir, filepath.Base(f.FileURL))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}

func (s *IngestionService) GetFile(ctx context.Context, tenantID, fileID uuid.UUID) (*models.ChatFile, error) {
	return s.fileRepo.GetByID(ctx, tenantID, fileID)
}

func (s *IngestionService) ListSessionFiles(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*models.ChatFile, error) {
	return s.fileRepo.ListBySession(ctx, tenantID, sessionID)
}
