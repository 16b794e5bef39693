package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Supported hash methods. The method and its parameters are embedded in
// every hash, so Verify needs no configuration.
const (
	MethodPBKDF2SHA256 = "pbkdf2:sha256"
	MethodBcrypt       = "bcrypt"
)

const saltBytes = 16

// ErrUnknownMethod is returned by New for an unsupported method id.
var ErrUnknownMethod = errors.New("unknown password hash method")

// Hasher produces salted one-way password hashes. Hashing the same input
// twice yields different strings; hashes are comparable only via Verify.
type Hasher struct {
	method     string
	iterations int
}

// New builds a Hasher for the given method. iterations applies to the
// PBKDF2 method only; values below 1 select the embedded default.
func New(method string, iterations int) (*Hasher, error) {
	switch method {
	case MethodPBKDF2SHA256, MethodBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if iterations < 1 {
		iterations = 600000
	}
	return &Hasher{method: method, iterations: iterations}, nil
}

// Hash digests the plaintext with a fresh random salt. PBKDF2 hashes use
// the encoding "pbkdf2:sha256:<iterations>$<salt>$<hex digest>"; bcrypt
// hashes keep the library's own "$2..." encoding.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.method == MethodBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(plaintext), []byte(saltHex), h.iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("%s:%d$%s$%s", MethodPBKDF2SHA256, h.iterations, saltHex, hex.EncodeToString(key)), nil
}

// Verify recomputes the digest using the method, salt and parameters
// embedded in encoded and compares in constant time. Any malformed hash
// verifies as false rather than erroring.
func Verify(encoded, plaintext string) bool {
	if strings.HasPrefix(encoded, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
	}

	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false
	}
	fields := strings.Split(parts[0], ":")
	if len(fields) != 3 || fields[0]+":"+fields[1] != MethodPBKDF2SHA256 {
		return false
	}
	iterations, err := strconv.Atoi(fields[2])
	if err != nil || iterations < 1 {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(plaintext), []byte(parts[1]), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
