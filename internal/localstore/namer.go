package localstore

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/radif/assetstore/internal/storage"
)

// maxNameAttempts bounds the name-N probing loop.
const maxNameAttempts = 1000

var unsafeChars = regexp.MustCompile(`[^\w@.]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9_@.] with "-".
func SanitizeFileName(name string) string {
	return unsafeChars.ReplaceAllString(name, "-")
}

// Namer dates upload directories and picks collision-free file names.
type Namer struct {
	// Now is the clock used for target directories; nil means time.Now.
	Now func() time.Time
}

// NewNamer returns a Namer using the wall clock.
func NewNamer() *Namer {
	return &Namer{Now: time.Now}
}

// TargetDir returns prefix/YYYY/MM for the current month.
func (n *Namer) TargetDir(prefix string) string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	t := now()
	return path.Join(prefix, t.Format("2006"), t.Format("01"))
}

// UniqueFileName sanitizes req.Name and tries name, name-1, name-2, ...
// until exists reports a free slot. It returns dir joined with that name.
func (n *Namer) UniqueFileName(ctx context.Context, req storage.UploadRequest, dir string, exists storage.ExistsFunc) (string, error) {
	file := path.Base(strings.ReplaceAll(req.Name, `\`, "/"))
	ext := path.Ext(file)
	base := SanitizeFileName(strings.TrimSuffix(file, ext))
	if base == "" || base == "." {
		base = "image"
	}
	ext = SanitizeFileName(ext)

	for i := 0; i < maxNameAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := base + ext
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		if exists == nil || !exists(ctx, candidate, dir) {
			return path.Join(dir, candidate), nil
		}
	}
	return "", fmt.Errorf("no free name for %q in %s after %d attempts", req.Name, dir, maxNameAttempts)
}
