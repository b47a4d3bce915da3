package license

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// encryptionSecret keys the license blob. Production builds override it with
// -ldflags "-X convertsave/internal/license.encryptionSecret=...".
var encryptionSecret = "convertsave-dev-secret"

const (
	scryptN   = 1 << 14
	scryptR   = 8
	scryptP   = 1
	keyLen    = 32
	nonceLen  = 12
	tagLen    = 16
	fixedSalt = "salt"
)

func deriveKey(secret string) ([]byte, error) {
	return scrypt.Key([]byte(secret), []byte(fixedSalt), scryptN, scryptR, scryptP, keyLen)
}

// EncryptRecord serializes the record and seals it with AES-256-GCM. The blob
// layout is base64(nonce[12] ‖ tag[16] ‖ ciphertext).
func EncryptRecord(rec Record) (string, error) {
	return encryptRecordWithSecret(rec, encryptionSecret)
}

func encryptRecordWithSecret(rec Record, secret string) (string, error) {
	plaintext, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("serialize license record: %w", err)
	}
	key, err := deriveKey(secret)
	if err != nil {
		return "", fmt.Errorf("derive license key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ct := sealed[:len(sealed)-tagLen]
	tag := sealed[len(sealed)-tagLen:]

	blob := make([]byte, 0, nonceLen+tagLen+len(ct))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptRecord reverses EncryptRecord.
func DecryptRecord(blob string) (Record, error) {
	return decryptRecordWithSecret(blob, encryptionSecret)
}

func decryptRecordWithSecret(blob, secret string) (Record, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return Record{}, fmt.Errorf("decode license blob: %w", err)
	}
	if len(raw) < nonceLen+tagLen {
		return Record{}, fmt.Errorf("license blob too short")
	}
	nonce := raw[:nonceLen]
	tag := raw[nonceLen : nonceLen+tagLen]
	ct := raw[nonceLen+tagLen:]

	key, err := deriveKey(secret)
	if err != nil {
		return Record{}, fmt.Errorf("derive license key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return Record{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Record{}, err
	}

	sealed := make([]byte, 0, len(ct)+tagLen)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return Record{}, fmt.Errorf("decrypt license blob: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return Record{}, fmt.Errorf("parse license record: %w", err)
	}
	return rec, nil
}
