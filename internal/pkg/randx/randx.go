/*
Package randx provides cryptographically secure random identifier generation.

It produces user ids, unique anonymous display names, and UUID message ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// UserIDSuffixLength is the length of the random Base62 tail of a user id.
	UserIDSuffixLength = 9

	// AnonUsernamePrefix is the prefix reserved for generated anonymous names.
	// Registered usernames that start with it are not rejected; collisions are
	// avoided by the length and randomness of the suffix, not by validation.
	AnonUsernamePrefix = "anon_"

	// AnonUsernameSuffixLength is the length of the random part of an anonymous name.
	AnonUsernameSuffixLength = 8
)

// base62String returns n cryptographically random Base62 characters.
func base62String(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random base62 character: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// UserID generates a new opaque user identifier of the form
// user_<unix-millis>_<random>. The timestamp keeps ids roughly sortable by
// creation time; the random tail makes concurrent logins collision-free.
func UserID() (string, error) {
	suffix, err := base62String(UserIDSuffixLength)
	if err != nil {
		return "", err
	}

	return "user_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix, nil
}

// AnonUsername generates a unique placeholder display name for an anonymous
// login so it never collides with a registered name.
func AnonUsername() (string, error) {
	suffix, err := base62String(AnonUsernameSuffixLength)
	if err != nil {
		return "", err
	}

	return AnonUsernamePrefix + suffix, nil
}

// MessageID generates a UUID v4 string to identify a message.
func MessageID() string {
	return uuid.New().String()
}
