package signature

import (
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/scg/portal/internal/domain/signature"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults of a sharded import
const (
	DefaultChunkSize = 1000
)

// ImportOptions controls a sharded import
type ImportOptions struct {
	ChunkSize int
	Workers   int

	// Progress, when set, is called after each chunk with the number of entries done
	Progress func(done, total int)
}

// Upload normalizes and upserts a bulk signature file in one batch.
// Malformed entries count as errors and do not abort the batch.
func (s *SignatureService) Upload(ctx context.Context, scanner signature.ScannerType, entries []json.RawMessage) (signature.UploadResult, error) {
	result, err := s.upsertChunk(ctx, scanner, entries, s.now())
	if err != nil {
		return signature.UploadResult{}, err
	}
	s.logger.Info(result.String(), zap.String("scanner", string(scanner)))
	return result, nil
}

// Import shards entries into chunks and upserts up to opts.Workers chunks at once.
// A chunk whose write fails counts all its entries as errors.
// Every entry of one import shares the same LastUpdate.
func (s *SignatureService) Import(ctx context.Context, scanner signature.ScannerType, entries []json.RawMessage, opts ImportOptions) (signature.UploadResult, error) {
	if _, err := signature.ParseScannerView(string(scanner), signature.ViewUpload); err != nil {
		return signature.UploadResult{}, err
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	batchTime := s.now()

	var (
		mu    sync.Mutex
		total signature.UploadResult
		done  int
	)
	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)
	for start := 0; start < len(entries) && ctx.Err() == nil; start += opts.ChunkSize {
		chunk := entries[start:min(start+opts.ChunkSize, len(entries))]
		g.Go(func() error {
			res, err := s.upsertChunk(ctx, scanner, chunk, batchTime)
			if err != nil {
				s.logger.Error("Failed to upsert signature chunk",
					zap.String("scanner", string(scanner)),
					zap.Int("size", len(chunk)),
					zap.Error(err))
				res = signature.UploadResult{Errors: len(chunk)}
			}
			mu.Lock()
			defer mu.Unlock()
			total.Add(res)
			done += len(chunk)
			if opts.Progress != nil {
				opts.Progress(done, len(entries))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info(total.String(),
		zap.String("scanner", string(scanner)),
		zap.Int("entries", len(entries)),
		zap.Int("workers", opts.Workers))
	return total, ctx.Err()
}

func (s *SignatureService) upsertChunk(ctx context.Context, scanner signature.ScannerType, raw []json.RawMessage, at time.Time) (signature.UploadResult, error) {
	switch scanner {
	case signature.ScannerNessus:
		sigs, result := normalize(raw, func(r json.RawMessage) (*signature.NessusSignature, error) {
			e, err := signature.DecodeNessusEntry(r)
			if err != nil {
				return nil, err
			}
			return e.ToSignature(at)
		}, func(sig *signature.NessusSignature) int { return sig.ID }, s.logger)
		created, updated, err := s.nessusRepo.Upsert(ctx, sigs)
		if err != nil {
			return result, err
		}
		result.New, result.Updated = created, updated
		return result, nil
	case signature.ScannerBurpSuite:
		sigs, result := normalize(raw, func(r json.RawMessage) (*signature.BurpSuiteSignature, error) {
			e, err := signature.DecodeBurpEntry(r)
			if err != nil {
				return nil, err
			}
			return e.ToSignature(at)
		}, func(sig *signature.BurpSuiteSignature) int { return sig.ID }, s.logger)
		created, updated, err := s.burpRepo.Upsert(ctx, sigs)
		if err != nil {
			return result, err
		}
		result.New, result.Updated = created, updated
		return result, nil
	}
	return signature.UploadResult{}, unsupported(scanner, signature.ViewUpload)
}

// normalize converts raw entries and keeps the last entry of a repeated ID.
// Earlier repeats count as skipped.
func normalize[T any](raw []json.RawMessage, convert func(json.RawMessage) (*T, error), id func(*T) int, logger *zap.Logger) ([]T, signature.UploadResult) {
	var result signature.UploadResult
	out := make([]T, 0, len(raw))
	index := make(map[int]int, len(raw))
	for i, r := range raw {
		sig, err := convert(r)
		if err != nil {
			result.Errors++
			logger.Warn("Skipping malformed signature entry", zap.Int("position", i), zap.Error(err))
			continue
		}
		if at, seen := index[id(sig)]; seen {
			out[at] = *sig
			result.Skipped++
			continue
		}
		index[id(sig)] = len(out)
		out = append(out, *sig)
	}
	return out, result
}
