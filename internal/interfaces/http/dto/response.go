package dto

import "sort"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is a field-level error message
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response that echoes the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// DetailsFromFields converts a domain field map into sorted details
func DetailsFromFields(fields map[string]string) []ValidationDetail {
	if len(fields) == 0 {
		return nil
	}
	details := make([]ValidationDetail, 0, len(fields))
	for field, message := range fields {
		details = append(details, ValidationDetail{Field: field, Message: message})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return details
}

// IDRequest represents a request with a merchant ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// LocationRequest addresses one location of a merchant
type LocationRequest struct {
	ID         string `uri:"id" binding:"required,uuid"`
	LocationID string `uri:"locationId" binding:"required,uuid"`
}

// ItemRequest addresses one item as seen at a location
type ItemRequest struct {
	ID         string `uri:"id" binding:"required,uuid"`
	LocationID string `uri:"locationId" binding:"required,uuid"`
	ItemID     string `uri:"itemId" binding:"required,uuid"`
}
