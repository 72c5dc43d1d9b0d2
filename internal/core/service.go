package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hdb_service/internal/domain/model"
)

// ErrValidation marks input errors the caller should surface as a
// client error rather than a server failure.
var ErrValidation = errors.New("invalid input")

// PredictionService orchestrates one prediction: validate and encode
// the categorical fields, resolve the address into location features,
// assemble the vector and run the model.
type PredictionService struct {
	resolver *FeatureResolver
	engine   model.Predictor
	log      *zap.Logger
}

func NewPredictionService(resolver *FeatureResolver, engine model.Predictor, log *zap.Logger) *PredictionService {
	return &PredictionService{
		resolver: resolver,
		engine:   engine,
		log:      log,
	}
}

// Predict returns the estimated resale price in SGD, rounded to the
// nearest thousand.
func (s *PredictionService) Predict(ctx context.Context, in model.PredictionInput) (float64, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}

	flatType, ok := FlatTypeCode(in.FlatType)
	if !ok {
		return 0, fmt.Errorf("%w: unrecognized flat type %q", ErrValidation, in.FlatType)
	}

	features := s.resolver.Resolve(ctx, in.Address)

	vector := model.FeatureVector{
		FlatType:       flatType,
		Storey:         in.Storey,
		FloorArea:      in.FloorArea,
		RemainingLease: in.RemainingLease,
		RPI:            in.RPI,
		DistanceMRT:    features.DistanceMRT,
		DistanceMall:   features.DistanceMall,
		Within1kmOfPri: features.Within1kmOfPri,
		Mature:         IsMatureEstate(in.Town),
	}

	price := s.engine.Predict(vector)
	s.log.Info("prediction served",
		zap.String("address", model.NormalizeAddress(in.Address)),
		zap.Float64("price", price))

	return price, nil
}

func validateInput(in model.PredictionInput) error {
	switch {
	case in.Storey < 0:
		return fmt.Errorf("%w: storey must be >= 0", ErrValidation)
	case in.FloorArea <= 0:
		return fmt.Errorf("%w: floor area must be > 0", ErrValidation)
	case in.RemainingLease < 0:
		return fmt.Errorf("%w: remaining lease must be >= 0", ErrValidation)
	case in.RPI < 0:
		return fmt.Errorf("%w: RPI must be >= 0", ErrValidation)
	case in.Address == "":
		return fmt.Errorf("%w: address is required", ErrValidation)
	case in.Town == "":
		return fmt.Errorf("%w: town is required", ErrValidation)
	}
	return nil
}
