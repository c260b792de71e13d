package crypto

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

var _ ports.Decryptor = (*AESDecryptor)(nil)

var (
	ErrInvalidKey        = errors.New("encryption key must be 32 bytes (raw or base64)")
	ErrInvalidIV         = errors.New("iv must be 16 bytes of base64")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// AESDecryptor reads credentials encrypted with AES-256-CBC and PKCS#7 padding.
type AESDecryptor struct {
	block cipher.Block
}

// NewAESDecryptor accepts the key as 32 raw characters or base64.
func NewAESDecryptor(key string) (*AESDecryptor, error) {
	raw, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &AESDecryptor{block: block}, nil
}

// Decrypt decodes base64 ciphertext with the base64 iv.
func (d *AESDecryptor) Decrypt(_ context.Context, ciphertext, iv string) (string, error) {
	ivBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(iv))
	if err != nil || len(ivBytes) != aes.BlockSize {
		return "", ErrInvalidIV
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCiphertext, err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: length %d", ErrInvalidCiphertext, len(data))
	}
	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(d.block, ivBytes).CryptBlocks(plain, data)
	unpadded, err := pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// Encrypt produces base64 ciphertext for plaintext, generating an iv when iv is empty.
// It returns the ciphertext and the iv used.
func (d *AESDecryptor) Encrypt(plaintext, iv string) (string, string, error) {
	var ivBytes []byte
	if iv == "" {
		ivBytes = make([]byte, aes.BlockSize)
		if _, err := io.ReadFull(rand.Reader, ivBytes); err != nil {
			return "", "", fmt.Errorf("generate iv: %w", err)
		}
	} else {
		decoded, err := base64.StdEncoding.DecodeString(iv)
		if err != nil || len(decoded) != aes.BlockSize {
			return "", "", ErrInvalidIV
		}
		ivBytes = decoded
	}
	padded := pkcs7Pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(d.block, ivBytes).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), base64.StdEncoding.EncodeToString(ivBytes), nil
}

func parseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if len(key) == 32 {
		return []byte(key), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil || len(decoded) != 32 {
		return nil, ErrInvalidKey
	}
	return decoded, nil
}

func pkcs7Pad(data []byte) []byte {
	padding := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidCiphertext
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidCiphertext)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("%w: bad padding", ErrInvalidCiphertext)
		}
	}
	return data[:len(data)-padding], nil
}
