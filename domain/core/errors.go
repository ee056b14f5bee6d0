package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrRecordNotFound   = fmt.Errorf("%w: record", ErrNotFound)
	ErrSettingsNotFound = fmt.Errorf("%w: study settings", ErrNotFound)

	// Pipeline errors
	ErrInsufficientData      = errors.New("insufficient data for analysis")
	ErrDegenerateSample      = errors.New("degenerate sample")
	ErrNoValidFit            = errors.New("no valid distribution fit")
	ErrInvalidConfiguration  = errors.New("invalid model configuration")
	ErrSingularDesign        = errors.New("singular design matrix")
	ErrUnsupportedFamily     = fmt.Errorf("%w: unsupported distribution family", ErrInvalidConfiguration)
	ErrUnsupportedStrategy   = fmt.Errorf("%w: unsupported sampling strategy", ErrInvalidConfiguration)
	ErrMissingPrior          = fmt.Errorf("%w: missing prior", ErrInvalidConfiguration)
	ErrMissingResponse       = fmt.Errorf("%w: no response variable", ErrInvalidConfiguration)
	ErrParameterVarMismatch  = fmt.Errorf("%w: parameter references unknown predictor", ErrInvalidConfiguration)
	ErrInvalidVariableBounds = fmt.Errorf("%w: variable min exceeds max", ErrInvalidConfiguration)
)
