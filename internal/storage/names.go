package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
)

// UploadName returns a fresh server-side name for an upload, keeping only
// a sanitized extension from the client's file name.
func UploadName(original string) string {
	return uuid.New().String() + SafeExt(original)
}

// SafeExt returns the lower-cased extension of name, or "" when it is
// missing or contains anything but letters and digits.
func SafeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// StoredName builds `instrumental_<YYYYmmdd_HHMMSS>_<8 hex>.<format>`.
// The random suffix keeps two saves within the same second apart.
func StoredName(now time.Time, format string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s%s_%s.%s", constants.StoredPrefix, now.Format(constants.StoredTimeLayout), suffix, format)
}

// DownloadName is the attachment name offered for an upload's instrumental.
func DownloadName(uploadName string) string {
	base := Sanitize(filepath.Base(strings.ReplaceAll(uploadName, "\\", "/")))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "audio"
	}
	return base + constants.InstrumentalSuffix + constants.ExtWAV
}

// Resolve joins a client supplied file name onto dir, refusing anything
// that is not a plain base name.
func Resolve(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}
	return filepath.Join(dir, name), nil
}
