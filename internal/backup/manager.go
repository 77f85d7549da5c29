package backup

import (
	"compress/gzip"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/stucknotes/stuck/pkg/errors"
)

// Manager snapshots the notes database into encrypted, compressed
// backup files and prunes old ones.
type Manager struct {
	db            *sql.DB
	log           zerolog.Logger
	backupDir     string
	encryptionKey []byte
	retentionDays int
}

// NewManager creates a backup manager. key must be 32 bytes (AES-256),
// typically derived by the key manager.
func NewManager(db *sql.DB, log zerolog.Logger, backupDir string, key []byte, retentionDays int) (*Manager, error) {
	if len(key) != 32 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "backup key must be 32 bytes")
	}

	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &Manager{
		db:            db,
		log:           log,
		backupDir:     backupDir,
		encryptionKey: key,
		retentionDays: retentionDays,
	}, nil
}

// CreateBackup snapshots the database via VACUUM INTO, then encrypts
// and compresses the snapshot. Returns the backup file path.
func (m *Manager) CreateBackup() (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(m.backupDir, fmt.Sprintf("notes_%s.db", timestamp))

	vacuumQuery := fmt.Sprintf("VACUUM INTO '%s'", backupPath)
	if _, err := m.db.Exec(vacuumQuery); err != nil {
		return "", fmt.Errorf("%w: vacuum: %v", errors.ErrBackupFailed, err)
	}

	encryptedPath := backupPath + ".enc.gz"
	if err := m.encryptAndCompressFile(backupPath, encryptedPath); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("%w: %v", errors.ErrBackupFailed, err)
	}

	// The plaintext snapshot must not linger on disk
	os.Remove(backupPath)

	if err := os.Chmod(encryptedPath, 0600); err != nil {
		return "", fmt.Errorf("%w: chmod: %v", errors.ErrBackupFailed, err)
	}

	if err := m.createChecksumFile(encryptedPath); err != nil {
		return "", fmt.Errorf("%w: checksum: %v", errors.ErrBackupFailed, err)
	}

	m.log.Info().Str("path", encryptedPath).Msg("backup created")
	return encryptedPath, nil
}

func (m *Manager) encryptAndCompressFile(srcPath, dstPath string) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	block, err := aes.NewCipher(m.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)

	dstFile, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	gzWriter := gzip.NewWriter(dstFile)
	defer gzWriter.Close()

	if _, err := gzWriter.Write(ciphertext); err != nil {
		return fmt.Errorf("failed to write compressed data: %w", err)
	}

	return nil
}

func (m *Manager) createChecksumFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(data)
	checksumPath := filePath + ".sha256"

	return os.WriteFile(checksumPath, []byte(fmt.Sprintf("%x", hash)), 0600)
}

// VerifyBackup recomputes a backup's checksum against the stored one.
func (m *Manager) VerifyBackup(backupPath string) error {
	checksumPath := backupPath + ".sha256"

	storedChecksum, err := os.ReadFile(checksumPath)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	hash := sha256.Sum256(data)
	if fmt.Sprintf("%x", hash) != string(storedChecksum) {
		return fmt.Errorf("%w: checksum mismatch for %s", errors.ErrRestoreFailed, backupPath)
	}

	return nil
}

// RestoreBackup decrypts a backup and writes the plain database file
// to dstPath. The caller is responsible for stopping writers first.
func (m *Manager) RestoreBackup(backupPath, dstPath string) error {
	if err := m.VerifyBackup(backupPath); err != nil {
		return err
	}

	srcFile, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrRestoreFailed, err)
	}
	defer srcFile.Close()

	gzReader, err := gzip.NewReader(srcFile)
	if err != nil {
		return fmt.Errorf("%w: gzip: %v", errors.ErrRestoreFailed, err)
	}
	defer gzReader.Close()

	ciphertext, err := io.ReadAll(gzReader)
	if err != nil {
		return fmt.Errorf("%w: read: %v", errors.ErrRestoreFailed, err)
	}

	block, err := aes.NewCipher(m.encryptionKey)
	if err != nil {
		return fmt.Errorf("%w: cipher: %v", errors.ErrRestoreFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: gcm: %v", errors.ErrRestoreFailed, err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return fmt.Errorf("%w: backup file truncated", errors.ErrRestoreFailed)
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return fmt.Errorf("%w: decrypt: %v", errors.ErrRestoreFailed, err)
	}

	if err := os.WriteFile(dstPath, plaintext, 0600); err != nil {
		return fmt.Errorf("%w: write: %v", errors.ErrRestoreFailed, err)
	}

	m.log.Info().Str("backup", backupPath).Str("dest", dstPath).Msg("backup restored")
	return nil
}

// CleanOldBackups removes backup files older than the retention window.
func (m *Manager) CleanOldBackups() error {
	cutoffTime := time.Now().AddDate(0, 0, -m.retentionDays)

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	deletedCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			filePath := filepath.Join(m.backupDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				m.log.Warn().Err(err).Str("path", filePath).Msg("failed to delete old backup")
				continue
			}
			deletedCount++
		}
	}

	if deletedCount > 0 {
		m.log.Info().Int("deleted", deletedCount).Msg("cleaned old backups")
	}

	return nil
}

// StartAutomatedBackups runs scheduled backups until ctx is cancelled.
func (m *Manager) StartAutomatedBackups(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info().Dur("interval", interval).Msg("automated backups started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("stopping automated backups")
			return
		case <-ticker.C:
			if _, err := m.CreateBackup(); err != nil {
				m.log.Error().Err(err).Msg("scheduled backup failed")
			}
			if err := m.CleanOldBackups(); err != nil {
				m.log.Error().Err(err).Msg("backup cleanup failed")
			}
		}
	}
}
