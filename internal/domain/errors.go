package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBatchRecord marks a batch that cannot be assessed. The batch is
// excluded and counted; the run continues.
var ErrInvalidBatchRecord = errors.New("invalid batch record")

// ErrInvalidShipmentRecord marks a shipment row that cannot be decoded.
var ErrInvalidShipmentRecord = errors.New("invalid shipment record")

// StructuralInputError is returned when a required field is absent across an
// entire input section. It fails the whole run.
type StructuralInputError struct {
	Section string
	Missing []string
}

func (e *StructuralInputError) Error() string {
	return fmt.Sprintf("structural input error: %s feed is missing required field(s): %s",
		e.Section, strings.Join(e.Missing, ", "))
}

// IsStructuralInputError reports whether err is or wraps a StructuralInputError.
func IsStructuralInputError(err error) bool {
	var target *StructuralInputError
	return errors.As(err, &target)
}
