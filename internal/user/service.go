package user

import (
	"errors"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"auth-backend/internal/password"
)

var (
	// ErrInvalidInput covers a missing email or password on login.
	ErrInvalidInput = errors.New("email and password are required")
	// ErrInvalidEmail covers an email that fails format validation.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoFields is returned when a profile patch carries nothing to apply.
	ErrNoFields = errors.New("no updatable fields provided")
)

// FieldError is a field-level validation failure; the handler maps it to a
// 400 with the message as-is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

// ProfilePatch carries the optional profile mutations. A nil or empty
// field is treated as absent.
type ProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Service implements credential verification and profile reads/updates on
// top of a Repository.
type Service struct {
	repo      Repository
	hasher    *password.Hasher
	dummyHash string
	now       func() time.Time
}

func NewService(repo Repository, hasher *password.Hasher) *Service {
	s := &Service{repo: repo, hasher: hasher, now: time.Now}
	// hashing a throwaway value up front gives the missing-user path in
	// Authenticate a real comparison target
	if dummy, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = dummy
	}
	return s
}

// NormalizeEmail trims surrounding whitespace and lower-cases, making the
// email a case-insensitive identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate verifies an email/password pair and returns the matching
// user. Unknown email and wrong password are indistinguishable by error
// value; the unknown-email path still performs a hash verification so the
// two cost the same.
func (s *Service) Authenticate(email, plaintext string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || plaintext == "" {
		return User{}, ErrInvalidInput
	}
	if err := validateEmail(email); err != nil {
		return User{}, ErrInvalidEmail
	}

	u, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			password.Verify(s.dummyHash, plaintext)
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if !password.Verify(u.PasswordHash, plaintext) {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// GetByID resolves a user by id, for the auth middleware.
func (s *Service) GetByID(id string) (User, error) {
	return s.repo.GetByID(id)
}

// Register creates a user with a freshly hashed password. Used by the seed
// utility; the HTTP surface has no registration endpoint.
func (s *Service) Register(email, plaintext, firstName, lastName string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || plaintext == "" {
		return User{}, ErrInvalidInput
	}
	if err := validateEmail(email); err != nil {
		return User{}, ErrInvalidEmail
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if err := validateName("First name", firstName); err != nil {
		return User{}, err
	}
	if err := validateName("Last name", lastName); err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		UpdatedAt:    s.now().UTC(),
	})
}

// UpdateProfile applies the provided patch fields to the user. Each
// provided field is trimmed, then validated; updatedAt moves with the same
// mutation. Fields left out of the patch are untouched.
func (s *Service) UpdateProfile(id string, patch ProfilePatch) (User, error) {
	if !provided(patch.FirstName) && !provided(patch.LastName) {
		return User{}, ErrNoFields
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}

	if provided(patch.FirstName) {
		v := strings.TrimSpace(*patch.FirstName)
		if err := validateName("First name", v); err != nil {
			return User{}, err
		}
		u.FirstName = v
	}
	if provided(patch.LastName) {
		v := strings.TrimSpace(*patch.LastName)
		if err := validateName("Last name", v); err != nil {
			return User{}, err
		}
		u.LastName = v
	}

	u.UpdatedAt = s.now().UTC()
	return s.repo.Update(u)
}

func provided(field *string) bool {
	return field != nil && *field != ""
}

func validateName(label, value string) error {
	err := validation.Validate(value,
		validation.Required.Error("cannot be empty"),
		validation.RuneLength(1, 100).Error("cannot exceed 100 characters"),
	)
	if err != nil {
		return &FieldError{Field: label, Reason: err.Error()}
	}
	return nil
}

func validateEmail(email string) error {
	return validation.Validate(email, validation.Required, validation.By(emailFormat))
}

// emailFormat enforces the address contract: no whitespace, exactly one
// @ with a non-empty local part, and a domain holding at least one dot
// between two non-empty labels.
func emailFormat(value interface{}) error {
	s, _ := value.(string)
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return errors.New("must not contain whitespace")
	}
	local, domain, found := strings.Cut(s, "@")
	if !found || local == "" || strings.Contains(domain, "@") {
		return errors.New("must contain exactly one @ with a local part")
	}
	labels := strings.Split(domain, ".")
	for i := 0; i+1 < len(labels); i++ {
		if labels[i] != "" && labels[i+1] != "" {
			return nil
		}
	}
	return errors.New("domain must contain a dot separating non-empty labels")
}
