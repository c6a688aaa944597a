package apportionment

import (
	"errors"
	"time"

	"github.com/courtpay/apportionment-api/internal/aggregation"
	"github.com/courtpay/apportionment-api/internal/types"
	"github.com/courtpay/apportionment-api/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrCaseNotFound = errors.New("no staged rows found for case")

// Service orchestrates one apportionment run: aggregate the case from the
// staging store, run the engine, then persist the full ledger. The engine's
// fee mutations are returned to the caller in the response; the service does
// not write fee state back to the staging store.
type Service struct {
	db      *Database
	staging *aggregation.Database
	engine  *Engine
}

func NewService(gormDB *gorm.DB, goLiveDate time.Time) *Service {
	return &Service{
		db:      NewDatabase(gormDB),
		staging: aggregation.NewDatabase(gormDB),
		engine:  NewEngine(goLiveDate),
	}
}

// ApportionCase runs the engine for a single case identified by its CCD case
// number, building the aggregate from the staging store.
func (s *Service) ApportionCase(ccdCaseNumber string) (*types.ApportionmentResponse, error) {
	logger := log.With().
		Str("ccd_case_number", ccdCaseNumber).
		Str("service", "apportionment").
		Logger()

	logger.Info().Msg("starting apportionment for case")

	agg, err := s.staging.AggregateCase(ccdCaseNumber)
	if err != nil {
		logger.Error().Err(err).Msg("failed to aggregate case")
		return nil, err
	}
	if agg == nil {
		logger.Warn().Msg("case has no staged rows")
		return nil, ErrCaseNotFound
	}

	return s.ApportionAggregate(agg)
}

// ApportionAggregate runs the engine against an already-built aggregate, for
// callers that assemble the case view themselves from an in-flight event.
// Computation completes fully before any persistence happens.
func (s *Service) ApportionAggregate(agg *types.CaseAggregate) (*types.ApportionmentResponse, error) {
	logger := log.With().
		Str("ccd_case_number", agg.CcdCaseNumber).
		Str("service", "apportionment").
		Logger()

	outcome := s.engine.Run(agg)

	if err := s.db.CreateLedgerEntries(outcome.Entries); err != nil {
		logger.Error().Err(err).Msg("failed to persist ledger entries")
		return nil, err
	}

	logger.Info().
		Int("entries_created", len(outcome.Entries)).
		Bool("is_surplus", outcome.IsSurplus).
		Bool("is_shortfall", outcome.IsShortfall).
		Msg("apportionment completed for case")

	return &types.ApportionmentResponse{
		CcdCaseNumber:  agg.CcdCaseNumber,
		EntriesCreated: len(outcome.Entries),
		IsSurplus:      outcome.IsSurplus,
		IsShortfall:    outcome.IsShortfall,
		Remaining:      outcome.Remaining,
		Fees:           agg.Fees,
		Timestamp:      time.Now(),
	}, nil
}

// GetCase returns the aggregated view of a case without running the engine.
func (s *Service) GetCase(ccdCaseNumber string) (*types.CaseResponse, error) {
	agg, err := s.staging.AggregateCase(ccdCaseNumber)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, ErrCaseNotFound
	}

	return &types.CaseResponse{
		CcdCaseNumber: agg.CcdCaseNumber,
		Groups:        agg.Groups,
		Fees:          agg.Fees,
		Payments:      agg.Payments,
		Timestamp:     time.Now(),
	}, nil
}

// GetLedger returns the persisted ledger entries for a case in creation order.
func (s *Service) GetLedger(ccdCaseNumber string) ([]LedgerEntry, error) {
	return s.db.GetLedgerForCase(ccdCaseNumber)
}

func (s *Service) GetDB() *Database {
	return s.db
}

func (s *Service) GetStagingDB() *aggregation.Database {
	return s.staging
}

// GinHandlers contains HTTP handlers for apportionment endpoints. The enabled
// flag is the feature toggle: it gates whether the engine runs at all, and is
// evaluated here at the trigger path, never inside the engine.
type GinHandlers struct {
	service *Service
	enabled bool
}

func NewGinHandlers(service *Service, enabled bool) *GinHandlers {
	return &GinHandlers{
		service: service,
		enabled: enabled,
	}
}

// ApportionCaseHandler handles POST requests to apportion a single case.
// Requires internal authentication. URL parameter: ccd_case_number
func (h *GinHandlers) ApportionCaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.enabled {
			response.Forbidden(c, "apportionment is not enabled for this service")
			return
		}

		ccdCaseNumber := c.Param("ccd_case_number")

		apportionmentResponse, err := h.service.ApportionCase(ccdCaseNumber)
		if errors.Is(err, ErrCaseNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Handle(c, apportionmentResponse, err)
	}
}

func (h *GinHandlers) GetCaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ccdCaseNumber := c.Param("ccd_case_number")

		caseResponse, err := h.service.GetCase(ccdCaseNumber)
		if errors.Is(err, ErrCaseNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Handle(c, caseResponse, err)
	}
}

func (h *GinHandlers) GetLedgerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ccdCaseNumber := c.Param("ccd_case_number")

		entries, err := h.service.GetLedger(ccdCaseNumber)
		response.Handle(c, entries, err)
	}
}
