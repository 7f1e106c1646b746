package handler

import (
	poapp "github.com/pohub/backend/internal/application/purchaseorder"
	"github.com/pohub/backend/internal/interfaces/http/dto"
)

// APIResponse is the envelope every endpoint writes, with Data typed for docs
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// Concrete envelopes named in the endpoint annotations
type (
	POResponse           = APIResponse[poapp.POPayload]
	POListResponse       = APIResponse[[]poapp.HeaderDTO]
	PreviewResponse      = APIResponse[poapp.PreviewResult]
	ImportReportResponse = APIResponse[poapp.ImportReport]
	VendorListResponse   = APIResponse[[]poapp.VendorInfo]
)

// ErrorResponse is the envelope of a failed request
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
