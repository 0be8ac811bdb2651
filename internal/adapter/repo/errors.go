package repo

import (
	"fmt"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
)

// storageErr tags a driver error as a storage failure while keeping the cause
// reachable through errors.Is / errors.As.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
