package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// CredentialLen is the byte length of both the salt and the derived hash
	// (the SHA-512 output size).
	CredentialLen = sha512.Size

	// HashIterations is the PBKDF2 work factor. Changing it invalidates every
	// stored hash.
	HashIterations = 25_000
)

// Credentials is a salt and password hash pair, both uppercase hex.
// The two values always come from the same GenerateCredentials call.
type Credentials struct {
	Salt string
	Hash string
}

// GenerateCredentials draws a fresh random salt and derives the password hash
// with PBKDF2-HMAC-SHA-512. It only fails when the system random source does;
// callers must treat that as fatal for the request.
func GenerateCredentials(password string) (*Credentials, error) {
	salt, err := common.GenerateRandByteArray(CredentialLen)
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	hash := deriveKey([]byte(password), salt)

	return &Credentials{
		Salt: strings.ToUpper(hex.EncodeToString(salt)),
		Hash: strings.ToUpper(hex.EncodeToString(hash)),
	}, nil
}

// VerifyCredentials reports whether password matches the stored salt/hash
// pair. Undecodable or wrongly sized stored values count as a mismatch.
func VerifyCredentials(salt, hash, password string) bool {
	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	hashBytes, err := hex.DecodeString(hash)
	if err != nil || len(hashBytes) != CredentialLen {
		return false
	}

	candidate := deriveKey([]byte(password), saltBytes)
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(candidate, hashBytes) == 1
}

func deriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, HashIterations, CredentialLen, sha512.New)
}
