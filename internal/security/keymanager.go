package security

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 256000
	keyLength     = 32
)

// Per-purpose salts keep the store key and the backup key independent
// even when both are derived from the same passphrase.
var (
	dbKeySalt     = []byte("stuck.db.v1")
	backupKeySalt = []byte("stuck.backup.v1")
)

type KeyManager struct {
	dbKey     []byte
	backupKey []byte
}

// NewKeyManager derives the store and backup keys from their passphrases.
// Either passphrase may be empty, which leaves that key nil (feature off).
func NewKeyManager(dbPassphrase, backupPassphrase string) *KeyManager {
	km := &KeyManager{}
	if dbPassphrase != "" {
		km.dbKey = deriveKey(dbPassphrase, dbKeySalt)
	}
	if backupPassphrase != "" {
		km.backupKey = deriveKey(backupPassphrase, backupKeySalt)
	}
	return km
}

// DBKey returns the hex-safe database encryption key, or "" when the
// store is unencrypted.
func (km *KeyManager) DBKey() string {
	if km.dbKey == nil {
		return ""
	}
	return fmt.Sprintf("%x", km.dbKey)
}

// BackupKey returns the raw backup encryption key, or nil.
func (km *KeyManager) BackupKey() []byte {
	return km.backupKey
}

// deriveKey derives a 32-byte key from a passphrase using PBKDF2-SHA256
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keyLength, sha256.New)
}
