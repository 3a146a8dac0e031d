package signature

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
	"go.uber.org/zap"
)

// DefaultPageSize is the page size of signature lists
const DefaultPageSize = 50

// ErrDuplicateSignature is returned when a signature with the ID already exists
var ErrDuplicateSignature = shared.NewDomainError("ALREADY_EXISTS", "Signature with this ID already exists.")

// SignatureService manages the Nessus and Burp Suite signature catalogs
type SignatureService struct {
	nessusRepo signature.NessusSignatureRepository
	burpRepo   signature.BurpSuiteSignatureRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewSignatureService creates a new SignatureService
func NewSignatureService(
	nessusRepo signature.NessusSignatureRepository,
	burpRepo signature.BurpSuiteSignatureRepository,
	logger *zap.Logger,
) *SignatureService {
	return &SignatureService{
		nessusRepo: nessusRepo,
		burpRepo:   burpRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns a page of the catalog of the given scanner
func (s *SignatureService) List(ctx context.Context, scanner signature.ScannerType, filter SignatureListFilter) ([]SignatureResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if filter.ID > 0 {
		f.Filters["id"] = filter.ID
	}

	switch scanner {
	case signature.ScannerNessus:
		if filter.RiskFactor != "" {
			f.Filters["risk_factor"] = filter.RiskFactor
		}
		sigs, err := s.nessusRepo.FindAll(ctx, f)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.nessusRepo.Count(ctx, f)
		if err != nil {
			return nil, 0, err
		}
		out := make([]SignatureResponse, len(sigs))
		for i := range sigs {
			out[i] = ToNessusResponse(&sigs[i])
		}
		return out, total, nil
	case signature.ScannerBurpSuite:
		sigs, err := s.burpRepo.FindAll(ctx, f)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.burpRepo.Count(ctx, f)
		if err != nil {
			return nil, 0, err
		}
		out := make([]SignatureResponse, len(sigs))
		for i := range sigs {
			out[i] = ToBurpResponse(&sigs[i])
		}
		return out, total, nil
	}
	return nil, 0, unsupported(scanner, signature.ViewList)
}

// Get returns one signature
func (s *SignatureService) Get(ctx context.Context, scanner signature.ScannerType, id int) (*SignatureResponse, error) {
	switch scanner {
	case signature.ScannerNessus:
		sig, err := s.nessusRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := ToNessusResponse(sig)
		return &resp, nil
	case signature.ScannerBurpSuite:
		sig, err := s.burpRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := ToBurpResponse(sig)
		return &resp, nil
	}
	return nil, unsupported(scanner, signature.ViewDetail)
}

// Create adds a signature under the scanner's own ID
func (s *SignatureService) Create(ctx context.Context, scanner signature.ScannerType, req SignatureRequest) (*SignatureResponse, error) {
	if err := signature.ValidateID(req.ID); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, scanner, req.ID); err == nil {
		return nil, ErrDuplicateSignature
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var resp SignatureResponse
	switch scanner {
	case signature.ScannerNessus:
		sig := &signature.NessusSignature{ID: req.ID, LastUpdate: s.now()}
		req.applyNessus(sig)
		if err := sig.Validate(); err != nil {
			return nil, err
		}
		if err := s.nessusRepo.Create(ctx, sig); err != nil {
			return nil, err
		}
		resp = ToNessusResponse(sig)
	case signature.ScannerBurpSuite:
		sig := &signature.BurpSuiteSignature{ID: req.ID, LastUpdate: s.now()}
		req.applyBurp(sig)
		if err := sig.Validate(); err != nil {
			return nil, err
		}
		if err := s.burpRepo.Create(ctx, sig); err != nil {
			return nil, err
		}
		resp = ToBurpResponse(sig)
	default:
		return nil, unsupported(scanner, signature.ViewCreate)
	}

	s.logger.Info("Signature created",
		zap.String("scanner", string(scanner)),
		zap.Int("signature_id", req.ID))
	return &resp, nil
}

// Update replaces the fields of a signature. The ID cannot change.
func (s *SignatureService) Update(ctx context.Context, scanner signature.ScannerType, id int, req SignatureRequest) (*SignatureResponse, error) {
	var resp SignatureResponse
	switch scanner {
	case signature.ScannerNessus:
		sig, err := s.nessusRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		req.applyNessus(sig)
		sig.LastUpdate = s.now()
		if err := sig.Validate(); err != nil {
			return nil, err
		}
		if err := s.nessusRepo.Update(ctx, sig); err != nil {
			return nil, err
		}
		resp = ToNessusResponse(sig)
	case signature.ScannerBurpSuite:
		sig, err := s.burpRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		req.applyBurp(sig)
		sig.LastUpdate = s.now()
		if err := sig.Validate(); err != nil {
			return nil, err
		}
		if err := s.burpRepo.Update(ctx, sig); err != nil {
			return nil, err
		}
		resp = ToBurpResponse(sig)
	default:
		return nil, unsupported(scanner, signature.ViewUpdate)
	}

	s.logger.Info("Signature updated",
		zap.String("scanner", string(scanner)),
		zap.Int("signature_id", id))
	return &resp, nil
}

// Delete removes a signature
func (s *SignatureService) Delete(ctx context.Context, scanner signature.ScannerType, id int) error {
	var err error
	switch scanner {
	case signature.ScannerNessus:
		err = s.nessusRepo.Delete(ctx, id)
	case signature.ScannerBurpSuite:
		err = s.burpRepo.Delete(ctx, id)
	default:
		return unsupported(scanner, signature.ViewDelete)
	}
	if err != nil {
		return err
	}
	s.logger.Info("Signature deleted",
		zap.String("scanner", string(scanner)),
		zap.String("signature_id", strconv.Itoa(id)))
	return nil
}

func unsupported(scanner signature.ScannerType, view signature.View) error {
	_, err := signature.ParseScannerView(string(scanner), view)
	return err
}
