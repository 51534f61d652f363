package utils

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// IDGenerator hands out opaque identifiers for packets, heats and results.
// Injected so tests can supply deterministic values; production code uses
// UUIDGenerator, which is collision-free across devices.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Clock is injected wherever logic needs the current time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
