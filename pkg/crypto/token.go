package crypto

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Session tokens are a stable marker plus 32 alphanumeric
	// characters, uniform over 62^32.
	SessionTokenPrefix = "sess_"
	sessionTokenLength = 32

	sessionTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	sessionTokenMask     = 63 // next power-of-two mask above len(alphabet)-1
)

var (
	ErrInvalidBotTokenFormat = errors.New("invalid bot token format")

	// Telegram bot tokens: "<bot_id>:<auth token>" where the auth
	// token half is 35-50 chars of letters, digits, hyphen, underscore.
	botTokenRe     = regexp.MustCompile(`^[0-9]+:[A-Za-z0-9_-]{35,50}$`)
	sessionTokenRe = regexp.MustCompile(`^sess_[A-Za-z0-9]{32}$`)
)

// VerifyBotTokenFormat is a pure syntax check on an externally-issued
// bot token. Used before any network or storage operation to
// short-circuit malformed input cheaply.
func VerifyBotTokenFormat(token string) bool {
	if !botTokenRe.MatchString(token) {
		return false
	}
	id, err := strconv.ParseInt(token[:strings.IndexByte(token, ':')], 10, 64)
	return err == nil && id > 0
}

// ExtractBotID returns the integer prefix of a bot token.
func ExtractBotID(token string) (int64, error) {
	if !VerifyBotTokenFormat(token) {
		return 0, ErrInvalidBotTokenFormat
	}
	return strconv.ParseInt(token[:strings.IndexByte(token, ':')], 10, 64)
}

// VerifySessionTokenFormat checks the shape produced by
// GenerateSessionToken. Tokens failing this are rejected before any
// storage lookup.
func VerifySessionTokenFormat(token string) bool {
	return sessionTokenRe.MatchString(token)
}

// GenerateSessionToken produces a fresh opaque session token from a
// cryptographically secure source. Byte values outside the alphabet
// range are rejected and redrawn to keep the distribution uniform.
func GenerateSessionToken() (string, error) {
	id := make([]byte, sessionTokenLength)
	buffer := make([]byte, sessionTokenLength*2)

	for position := 0; position < sessionTokenLength; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for i := 0; i < len(buffer) && position < sessionTokenLength; i++ {
			index := buffer[i] & sessionTokenMask
			if int(index) < len(sessionTokenAlphabet) {
				id[position] = sessionTokenAlphabet[index]
				position++
			}
		}
	}

	return SessionTokenPrefix + string(id), nil
}
