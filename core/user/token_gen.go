package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Password reset tokens are self-contained: a day-granular timestamp plus an
// HMAC over the user's id, password hash and last login. Changing the
// password or logging in invalidates all outstanding tokens without any
// server-side state.

var (
	tokenSalt                 = []byte("mwongozo.backend.core.user.token_gen")
	secretKey                 []byte
	passwordResetTimeoutDelta time.Duration

	nowFunc = time.Now // mockable

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

var tokenEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// EncodeUID base64 encodes given User ID
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (string, error) {
	id, err := base64.RawURLEncoding.DecodeString(uid)
	return string(id), err
}

// MakeToken generates a password reset token for a given User.
func MakeToken(usr User) (string, error) {
	return makeToken(usr, daysSinceEpoch(nowFunc()))
}

// verifyToken checks that a password reset token for a given User is valid.
func verifyToken(usr User, token string) error {
	tsPart, _, found := cutToken(token)
	if !found {
		return errInvalidToken
	}
	raw, err := b32.DecodeString(tsPart)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(raw))
	if err != nil {
		return errInvalidToken
	}

	// recompute and compare; a stale password hash or last login no longer matches
	expected, err := makeToken(usr, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 0 {
		return errInvalidToken
	}

	maxAgeDays := int(passwordResetTimeoutDelta / (24 * time.Hour))
	if daysSinceEpoch(time.Now())-ts > maxAgeDays {
		return errTokenExpired
	}
	return nil
}

func cutToken(token string) (ts, sig string, found bool) {
	if token == "" {
		return "", "", false
	}
	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func makeToken(usr User, ts int) (string, error) {
	var state bytes.Buffer
	state.WriteString(usr.ID)
	state.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		state.WriteString(usr.LastLogin.String())
	}
	state.WriteString(strconv.Itoa(ts))

	key := sha256.Sum256(append(tokenSalt, secretKey...))
	mac := hmac.New(sha256.New, key[:])
	if _, err := mac.Write(state.Bytes()); err != nil {
		return "", err
	}
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return b32.EncodeToString([]byte(strconv.Itoa(ts))) + "-" + sig, nil
}

func daysSinceEpoch(t time.Time) int {
	d := t.Sub(tokenEpoch)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
