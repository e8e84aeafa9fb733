package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrSignExpired = errors.New("sign expired")
	ErrSignInvalid = errors.New("sign invalid")
)

// Signer issues and checks HMAC tokens of the form "<unix-expiry>.<hex-mac>"
// where the mac covers both the payload and the expiry. A token is scoped to
// exactly the payload it was minted for; decision links embed
// roomId|email|decision so a token for one tuple opens no other door.
type Signer struct {
	secret []byte
}

func New(secret []byte) *Signer {
	return &Signer{secret: secret}
}

func (s *Signer) WithDuration(data string, d time.Duration) string {
	return s.sign(data, time.Now().Add(d).Unix())
}

// NotExpired mints a token without an expiry. Decision links should not use
// this; it exists for internal links that die with the room anyway.
func (s *Signer) NotExpired(data string) string {
	return s.sign(data, 0)
}

func (s *Signer) Verify(data, token string) error {
	expiryPart, macPart, ok := strings.Cut(token, ".")
	if !ok {
		return ErrSignInvalid
	}

	expiry, err := strconv.ParseInt(expiryPart, 10, 64)
	if err != nil {
		return ErrSignInvalid
	}

	if !hmac.Equal([]byte(macPart), []byte(s.mac(data, expiry))) {
		return ErrSignInvalid
	}

	if expiry != 0 && time.Now().Unix() > expiry {
		return ErrSignExpired
	}

	return nil
}

func (s *Signer) sign(data string, expiry int64) string {
	return fmt.Sprintf("%d.%s", expiry, s.mac(data, expiry))
}

func (s *Signer) mac(data string, expiry int64) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s|%d", data, expiry)
	return hex.EncodeToString(h.Sum(nil))
}

// DecisionPayload is the canonical string a decision token signs over.
func DecisionPayload(roomID, email string, approve bool) string {
	return fmt.Sprintf("%s|%s|%t", roomID, email, approve)
}
