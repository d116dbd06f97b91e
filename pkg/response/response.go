package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Machine-readable error codes carried in every non-2xx JSON response.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeEmptyRequestBody = "EMPTY_REQUEST_BODY"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeMissingFields    = "MISSING_REQUIRED_FIELDS"
	CodeInvalidURL       = "INVALID_URL"
	CodeInvalidID        = "INVALID_ID"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeServerError      = "INTERNAL_ERROR"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Code:    CodeEmptyRequestBody,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Code:    CodeBadRequest,
	Error:   "Bad Request",
	Message: "The request is malformed or contains invalid data.",
}

var MissingFieldsResponse = Response{
	Status:  StatusError,
	Code:    CodeMissingFields,
	Error:   "Missing Required Fields",
	Message: "Original URL is required.",
}

var InvalidURLResponse = Response{
	Status:  StatusError,
	Code:    CodeInvalidURL,
	Error:   "Invalid URL",
	Message: "The provided URL is not a valid absolute URL.",
}

var InvalidIDResponse = Response{
	Status:  StatusError,
	Code:    CodeInvalidID,
	Error:   "Invalid ID",
	Message: "A valid integer URL id is required.",
}

var UnauthorizedResponse = Response{
	Status:  StatusError,
	Code:    CodeUnauthorized,
	Error:   "Unauthorized",
	Message: "Authentication required.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Code:    CodeNotFound,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Code:    CodeServerError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func getValidationErrors(err error) []validationError {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil
	}

	details := make([]validationError, 0, len(vErrs))
	for _, fe := range vErrs {
		issue := fmt.Sprintf("Invalid %s.", fe.Tag())
		if fe.Tag() == "required" {
			issue = "This field is required."
		}

		details = append(details, validationError{
			Field: fe.Field(),
			Value: fe.Value(),
			Issue: issue,
		})
	}

	return details
}

func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Code:    CodeValidationError,
		Error:   "Validation Error",
		Message: "The request contains invalid fields.",
	}

	for _, vErr := range getValidationErrors(err) {
		resp.Details = append(resp.Details, vErr)
	}

	return resp
}
