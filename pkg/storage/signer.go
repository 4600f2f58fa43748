package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cramsheets/cramsheets-backend/pkg/config"
)

var (
	// ErrExpired signals a link whose deadline has passed.
	ErrExpired = errors.New("download link expired")
	// ErrBadSignature signals a link whose signature does not verify.
	ErrBadSignature = errors.New("download link signature mismatch")
)

// Signer issues and verifies expiring download links for stored files.
// Blob serving itself lives behind a CDN or file server that shares the
// signing secret; the API only hands out links.
type Signer struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewSigner builds a Signer from the download configuration.
func NewSigner(cfg config.DownloadConfig) (*Signer, error) {
	if cfg.SigningSecret == "" {
		return nil, errors.New("download signing secret is required")
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Signer{
		secret:  []byte(cfg.SigningSecret),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// SignedURL returns a link to fileKey that stays valid for the configured TTL.
func (s *Signer) SignedURL(fileKey string) (string, error) {
	if fileKey == "" {
		return "", errors.New("file key is required")
	}

	expires := s.now().Add(s.ttl).Unix()
	sig := s.sign(fileKey, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)

	return fmt.Sprintf("%s/%s?%s", s.baseURL, url.PathEscape(fileKey), q.Encode()), nil
}

// Verify checks the signature and deadline extracted from a download request.
func (s *Signer) Verify(fileKey string, expires int64, sig string) error {
	expected := s.sign(fileKey, expires)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrBadSignature
	}
	if s.now().Unix() > expires {
		return ErrExpired
	}
	return nil
}

func (s *Signer) sign(fileKey string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", fileKey, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
