package documents

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"humangov/internal/shared/util"
)

var allowedExtensions = map[string]struct{}{
	"pdf": {},
}

// AllowedFile reports whether name carries an allowed extension after its
// final dot. The comparison is case-insensitive.
func AllowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}

// CheckFile validates an uploaded file name before any bytes are read.
func CheckFile(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingFile
	}
	if !AllowedFile(name) {
		return ErrFileType
	}
	return nil
}

// SecureFileName reduces name to a flat ASCII file name: accents are
// decomposed and dropped, path separators and whitespace become "_", anything
// outside [A-Za-z0-9._-] is removed and leading/trailing dots and underscores
// are trimmed. The result may be empty.
func SecureFileName(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII {
			continue
		}
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// UniqueFileName builds an object key of the form
// <stem>_<YYYYmmddHHMMSS>_<token>.pdf. An empty stem after cleaning becomes
// "document".
func UniqueFileName(stem string, now time.Time, token string) string {
	clean := SecureFileName(stem)
	if clean == "" {
		clean = "document"
	}
	return clean + "_" + now.UTC().Format("20060102150405") + "_" + token + ".pdf"
}

// NewFileName is UniqueFileName with the current time and an 8 character
// random token.
func NewFileName(stem string) string {
	return UniqueFileName(stem, time.Now(), util.RandomHex(4))
}
