package services

// PasswordHasher abstracts password hashing for credential validation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}
