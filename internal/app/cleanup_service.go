package app

import (
	"context"
	"log/slog"

	"displaydeck/internal/model"
)

// CleanupJob is the wire form of an out-of-band sweep request.
type CleanupJob struct {
	Mode string `json:"mode"`
}

const (
	CleanupModeUnreferenced = "unreferenced"
	CleanupModePurgeAll     = "purge_all"
)

// DisplayScanner supplies the root set for the mark phase.
type DisplayScanner interface {
	ListAllForScan() ([]model.Display, error)
}

// BlobSweepStore is the collector's view of the blob store: the full
// candidate set plus unconditional delete by id.
type BlobSweepStore interface {
	ListAllMeta() ([]model.Blob, error)
	Delete(id uint) (bool, error)
}

type SweepFailure struct {
	BlobID uint   `json:"blob_id"`
	Reason string `json:"reason"`
}

// SweepReport makes partial failure a first-class outcome: a bad blob is
// recorded and skipped, never allowed to abort the rest of the sweep.
type SweepReport struct {
	Deleted  int            `json:"deleted"`
	Kept     int            `json:"kept"`
	Failures []SweepFailure `json:"failures,omitempty"`
}

// CleanupService reclaims blobs no content document references any more,
// by mark and sweep over the display registry and the blob store.
type CleanupService struct {
	displays DisplayScanner
	blobs    BlobSweepStore
	logger   *slog.Logger
}

func NewCleanupService(displays DisplayScanner, blobs BlobSweepStore, logger *slog.Logger) *CleanupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupService{
		displays: displays,
		blobs:    blobs,
		logger:   logger,
	}
}

// CleanupUnreferenced derives the reachable set from every stored display
// (active or not) and deletes all blobs outside it. A blob uploaded but not
// yet written into any display is unreachable by definition and will be
// collected; callers must not rely on an uncommitted reference surviving a
// concurrent sweep.
func (s *CleanupService) CleanupUnreferenced(ctx context.Context) (*SweepReport, error) {
	displays, err := s.displays.ListAllForScan()
	if err != nil {
		return nil, err
	}

	reachable := make(map[string]struct{})
	for _, d := range displays {
		for ref := range ExtractReferences(d.ContentDoc) {
			reachable[ref] = struct{}{}
		}
	}

	return s.sweep(ctx, func(b model.Blob) bool {
		_, ok := reachable[b.AccessReference()]
		return ok
	})
}

// PurgeUnused sweeps against a caller-supplied live reference set instead of
// re-deriving reachability from the registry. References are canonicalized
// before comparison.
func (s *CleanupService) PurgeUnused(ctx context.Context, usedRefs []string) (*SweepReport, error) {
	reachable := make(map[string]struct{}, len(usedRefs))
	for _, raw := range usedRefs {
		if ref, ok := CanonicalizeReference(raw); ok {
			reachable[ref] = struct{}{}
		}
	}

	return s.sweep(ctx, func(b model.Blob) bool {
		_, ok := reachable[b.AccessReference()]
		return ok
	})
}

// PurgeAll deletes every stored blob.
func (s *CleanupService) PurgeAll(ctx context.Context) (*SweepReport, error) {
	return s.sweep(ctx, func(model.Blob) bool { return false })
}

// DeleteNamed deletes an explicit id list, with the same per-item failure
// aggregation as a sweep.
func (s *CleanupService) DeleteNamed(ctx context.Context, ids []uint) (*SweepReport, error) {
	report := &SweepReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		removed, err := s.blobs.Delete(id)
		if err != nil {
			s.logger.Warn("delete blob failed", "blob_id", id, "err", err)
			report.Failures = append(report.Failures, SweepFailure{BlobID: id, Reason: err.Error()})
			continue
		}
		if removed {
			report.Deleted++
		}
	}
	return report, nil
}

// sweep walks every blob and deletes the ones keep rejects. The loop is
// interruptible between iterations; a completed iteration leaves the store
// valid, so abandonment at any boundary is safe.
func (s *CleanupService) sweep(ctx context.Context, keep func(model.Blob) bool) (*SweepReport, error) {
	blobs, err := s.blobs.ListAllMeta()
	if err != nil {
		return nil, err
	}

	report := &SweepReport{}
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if keep(b) {
			report.Kept++
			continue
		}

		removed, err := s.blobs.Delete(b.ID)
		if err != nil {
			s.logger.Warn("sweep delete failed", "blob_id", b.ID, "ref", b.AccessReference(), "err", err)
			report.Failures = append(report.Failures, SweepFailure{BlobID: b.ID, Reason: err.Error()})
			continue
		}
		if removed {
			s.logger.Info("swept unreferenced blob", "blob_id", b.ID, "ref", b.AccessReference(), "name", b.OriginalName)
			report.Deleted++
		}
	}
	return report, nil
}
