package purchaseorder

import (
	"errors"
	"fmt"

	"github.com/pohub/backend/internal/domain/shared"
)

// invalidInput reclassifies a validation failure as INVALID_INPUT.
// The original error stays reachable through errors.Is.
func invalidInput(err error) error {
	return shared.WrapDomainError(shared.ErrInvalidInput.Code, err.Error(), err)
}

func parseFailed(err error) error {
	return shared.WrapDomainError(shared.ErrParseFailed.Code,
		fmt.Sprintf("failed to parse file, check format: %v", err), err)
}

func fileTooLarge(size, limit int64) error {
	return shared.NewDomainError(shared.ErrFileTooLarge.Code,
		fmt.Sprintf("file is %d bytes, maximum allowed is %d", size, limit))
}

func internalError(msg string, err error) error {
	return shared.WrapDomainError(shared.ErrInternal.Code, fmt.Sprintf("%s: %v", msg, err), err)
}

// errorCode returns the domain code carried by err, or INTERNAL_ERROR
func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return shared.ErrInternal.Code
}
