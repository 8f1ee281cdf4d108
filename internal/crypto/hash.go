package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	ErrUnknownAlgorithm    = errors.New("unknown password hashing algorithm")
)

const bcryptMaxBytes = 72

// Algorithm names a password hashing scheme.
type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for password hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher hashes new passwords with one configured algorithm and
// verifies stored hashes of any supported algorithm, so bcrypt hashes created
// before a switch to argon2id (or the reverse) keep working.
type PasswordHasher struct {
	algorithm  Algorithm
	params     HashParams
	bcryptCost int
}

// NewPasswordHasher validates the work factor and returns a hasher.
func NewPasswordHasher(alg Algorithm, params HashParams, bcryptCost int) (*PasswordHasher, error) {
	switch alg {
	case Argon2id:
		if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
			return nil, errors.New("argon2id memory, iterations and parallelism must be positive")
		}
		if params.SaltLength < 8 || params.KeyLength < 16 {
			return nil, errors.New("argon2id salt or key length too short")
		}
	case Bcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return nil, ErrUnknownAlgorithm
	}

	return &PasswordHasher{algorithm: alg, params: params, bcryptCost: bcryptCost}, nil
}

// Algorithm returns the scheme used for new hashes.
func (h *PasswordHasher) Algorithm() Algorithm {
	return h.algorithm
}

// Hash derives a salted one-way hash of password. Each call draws a fresh
// salt, so equal passwords produce different encodings.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.algorithm == Bcrypt {
		b, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}
		return string(b), nil
	}
	return hashArgon2id(password, h.params)
}

// Verify reports whether password matches encodedHash. A mismatch is
// (false, nil); an error means the stored hash itself is unusable.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return verifyArgon2id(password, encodedHash)
	case isBcryptHash(encodedHash):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), bcryptInput(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
	default:
		return false, ErrInvalidHashFormat
	}
}

// bcryptInput returns the bytes bcrypt actually uses. Bytes past
// bcryptMaxBytes are dropped rather than rejected.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func hashArgon2id(password string, params HashParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	// PHC format: $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.Memory,
		params.Iterations,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

// decodeHash parses a PHC-formatted Argon2id hash string.
func decodeHash(encodedHash string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	if parts[1] != "argon2id" {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var params HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.SaltLength = uint32(len(salt))

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.KeyLength = uint32(len(hash))

	return params, salt, hash, nil
}
