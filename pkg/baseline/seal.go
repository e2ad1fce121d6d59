package baseline

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrSealAuthentication indicates an HMAC signature mismatch on a
	// sealed baseline document.
	ErrSealAuthentication = errors.New("baseline document authentication failed")
	// ErrSealDecryption indicates AES-GCM decryption failed, usually
	// because the document was tampered with or the wrong key was used.
	ErrSealDecryption = errors.New("baseline document decryption failed")
	// ErrSealKeySize indicates an incorrect key size.
	ErrSealKeySize = errors.New("invalid seal key size")
)

const (
	sealKeySize   = 32 // AES-256
	sealNonceSize = 12 // GCM standard nonce
)

// sealedDocument is the on-disk layout of an encrypted baseline set.
type sealedDocument struct {
	Nonce      []byte `json:"n"`
	Ciphertext []byte `json:"c"`
	Signature  []byte `json:"s"` // HMAC-SHA256 over nonce + ciphertext
}

// Sealer encrypts and authenticates the persisted baseline document so an
// attacker with write access to the backing file cannot silently rewrite
// accepted baselines. Encryption and signing use independent keys.
type Sealer struct {
	encryptionKey []byte
	signingKey    []byte
}

// NewSealer validates key sizes and returns a Sealer. Both keys must be
// 32 bytes.
func NewSealer(encryptionKey, signingKey []byte) (*Sealer, error) {
	if len(encryptionKey) != sealKeySize {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes", ErrSealKeySize, sealKeySize)
	}
	if len(signingKey) != sealKeySize {
		return nil, fmt.Errorf("%w: signing key must be %d bytes", ErrSealKeySize, sealKeySize)
	}
	return &Sealer{encryptionKey: encryptionKey, signingKey: signingKey}, nil
}

// Seal encrypts plaintext with AES-GCM, signs nonce+ciphertext with
// HMAC-SHA256, and returns the marshalled sealed document. Signing both
// parts ensures neither can be replaced independently.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, sealNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	doc := sealedDocument{
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Signature:  s.sign(nonce, ciphertext),
	}
	return json.Marshal(doc)
}

// Open verifies the signature, decrypts the sealed document, and returns
// the original plaintext. Verification happens before any decryption.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	var doc sealedDocument
	if err := json.Unmarshal(sealed, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sealed document: %w", err)
	}
	if len(doc.Nonce) != sealNonceSize || doc.Ciphertext == nil || doc.Signature == nil {
		return nil, errors.New("incomplete sealed document")
	}

	if !hmac.Equal(doc.Signature, s.sign(doc.Nonce, doc.Ciphertext)) {
		return nil, ErrSealAuthentication
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, doc.Nonce, doc.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSealDecryption, err)
	}
	return plaintext, nil
}

func (s *Sealer) sign(nonce, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(nonce)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}
