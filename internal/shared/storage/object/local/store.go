package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"humangov/internal/shared/storage/object"
	"humangov/internal/shared/telemetry"
)

// RoutePrefix is where signed local links are served.
const RoutePrefix = "/local-objects"

var (
	ErrInvalidKey       = errors.New("invalid storage key")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrLinkExpired      = errors.New("link expired")
)

// Store implements ObjectStore using the local filesystem. Links are signed
// with HMAC-SHA256 and served by Handler.
type Store struct {
	baseDir string
	secret  []byte
	now     func() time.Time
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string, secret []byte) *Store {
	return &Store{baseDir: baseDir, secret: secret, now: time.Now}
}

// Put writes body to disk at key. Objects are always served as PDF, so the
// content type is not recorded.
func (s *Store) Put(ctx context.Context, key, _ string, body io.ReadSeeker) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// PresignGet returns a relative link to key that expires after ttl.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.path(key); err != nil {
		return "", err
	}
	expires := s.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", s.sign(key, expires))
	return RoutePrefix + "/" + escapeKey(key) + "?" + q.Encode(), nil
}

// Verify checks a link's signature and expiry.
func (s *Store) Verify(key, expires, sig string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	want := s.sign(key, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrInvalidSignature
	}
	if s.now().Unix() > exp {
		return ErrLinkExpired
	}
	return nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Handler serves GET RoutePrefix/*key for links minted by PresignGet.
func (s *Store) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if err := s.Verify(key, c.Query("expires"), c.Query("sig")); err != nil {
			telemetry.Info("local_object.denied", map[string]any{"key": key, "reason": err.Error()})
			c.String(http.StatusForbidden, "Forbidden")
			return
		}

		f, err := s.Open(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				c.String(http.StatusNotFound, "Not Found")
				return
			}
			c.String(http.StatusForbidden, "Forbidden")
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}
		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filepath.Base(key)))
		http.ServeContent(c.Writer, c.Request, filepath.Base(key), info.ModTime(), f)
	}
}

func (s *Store) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Store) path(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ object.ObjectStore = (*Store)(nil)
