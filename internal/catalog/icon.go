package catalog

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
)

// Placeholder is the icon shown for items without a usable icon.
const Placeholder = "placeholder.webp"

// IconResolver turns a blob key into a displayable URL. It returns "" when
// no blob is stored under key.
type IconResolver func(ctx context.Context, key string) (string, error)

// ResolveIcon picks the icon source for item: the URL when it is valid,
// else the blob behind IconKey, else Placeholder. Resolver failures fall
// through to the placeholder.
func ResolveIcon(ctx context.Context, item Item, resolve IconResolver) string {
	if item.Icon != "" && ValidateIconURL(item.Icon) == nil {
		return item.Icon
	}
	if item.IconKey != "" && resolve != nil {
		if src, err := resolve(ctx, item.IconKey); err == nil && src != "" {
			return src
		}
	}
	return Placeholder
}

// DirResolver resolves blob keys to file:// URLs of files named after the
// key inside dir, with or without an extension.
func DirResolver(dir string) IconResolver {
	return func(ctx context.Context, key string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := filepath.Base(key)
		candidates := []string{filepath.Join(dir, name)}
		globbed, err := filepath.Glob(filepath.Join(dir, name+".*"))
		if err != nil {
			return "", err
		}
		candidates = append(candidates, globbed...)

		for _, path := range candidates {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return "", err
			}
			return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
		}
		return "", nil
	}
}
