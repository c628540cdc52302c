package diagfmt

import "jtidy/internal/source"

func formatPath(p string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(p); err == nil {
			return abs
		}
	case PathModeRelative:
		if rel, err := source.RelativePath(p, baseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return source.BaseName(p)
	}
	return p
}
