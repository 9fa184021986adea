package validation

import (
	"strings"

	"github.com/standupsync/standupsync/internal/day"
)

// CreateStandupRequest mirrors the fields needed for create validation.
type CreateStandupRequest struct {
	Date string
}

// ValidateCreateStandupRequest validates the fields of a create standup
// request. The item lists are free-form and need no validation.
func ValidateCreateStandupRequest(req CreateStandupRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Date) == "" {
		errs = append(errs, FieldError{Field: "date", Message: "date is required"})
	} else if _, err := day.Parse(req.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "date must be YYYY-MM-DD or RFC 3339"})
	}

	return errs
}

// RangeRequest mirrors the query parameters of a range listing.
type RangeRequest struct {
	StartDate string
	EndDate   string
}

// ValidateRangeRequest validates a range listing's query parameters.
func ValidateRangeRequest(req RangeRequest) []FieldError {
	var errs []FieldError

	start, startErr := validateDateParam("startDate", req.StartDate, &errs)
	end, endErr := validateDateParam("endDate", req.EndDate, &errs)

	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}

	return errs
}

func validateDateParam(field, value string, errs *[]FieldError) (day.Day, error) {
	if strings.TrimSpace(value) == "" {
		*errs = append(*errs, FieldError{Field: field, Message: field + " is required"})
		return day.Day{}, day.ErrInvalidDate
	}
	d, err := day.Parse(value)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: field + " must be YYYY-MM-DD or RFC 3339"})
		return day.Day{}, err
	}
	return d, nil
}
