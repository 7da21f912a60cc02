package scraper

import (
	"context"

	"github.com/havokzero/myrient-browser/internal/domain"

	"go.uber.org/zap"
)

// WalkFunc is called for every entry found below the walk root, with the
// location that listed it.
type WalkFunc func(at domain.Location, e domain.DirectoryEntry) error

// Walk lists root and every directory below it depth-first, calling fn for
// each entry. Directories are visited after fn has seen them. maxDepth limits
// recursion; 0 lists only root, negative means unlimited.
func (h *HTTPIndex) Walk(ctx context.Context, root domain.Location, maxDepth int, fn WalkFunc) error {
	return h.walk(ctx, root, 0, maxDepth, fn)
}

func (h *HTTPIndex) walk(ctx context.Context, at domain.Location, depth, maxDepth int, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := h.List(ctx, at.URL())
	if err != nil {
		return err
	}
	h.logger.Debug("Walking directory",
		zap.String("path", at.Path),
		zap.Int("depth", depth),
		zap.Int("entries", len(entries)))

	for _, e := range entries {
		if err := fn(at, e); err != nil {
			return err
		}
		if e.IsDir && (maxDepth < 0 || depth < maxDepth) {
			if err := h.walk(ctx, at.Into(e.Name), depth+1, maxDepth, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
