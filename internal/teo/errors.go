package teo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMissingCredentials не заданы SecretId/SecretKey
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrNoRegions не передан ни один регион
	ErrNoRegions = errors.New("no regions to try")
)

// Коды ошибок провайдера, при которых имеет смысл сменить регион
const (
	CodeUnsupportedRegion     = "UnsupportedRegion"
	CodeInvalidParameterValue = "InvalidParameterValue"
)

var regionHeaderPattern = regexp.MustCompile(`(?i)X-TC-Region`)

// APIError ошибка, возвращенная провайдером в поле Response.Error
type APIError struct {
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (requestId: %s)", e.Code, e.Message, e.RequestID)
}

// IsRegionError true, если ошибка означает, что действие недоступно в регионе
func IsRegionError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == CodeUnsupportedRegion {
		return true
	}
	return apiErr.Code == CodeInvalidParameterValue && regionHeaderPattern.MatchString(apiErr.Message)
}

// RegionFallbackError все регионы вернули ошибку региона
type RegionFallbackError struct {
	Action  string
	Regions []string
	Last    *APIError
}

func (e *RegionFallbackError) Error() string {
	msg := ""
	if e.Last != nil {
		msg = e.Last.Message
	}
	return fmt.Sprintf("%s failed in all regions (%s): %s", e.Action, strings.Join(e.Regions, ", "), msg)
}

func (e *RegionFallbackError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}

// Code код последней ошибки провайдера
func (e *RegionFallbackError) Code() string {
	if e.Last == nil {
		return ""
	}
	return e.Last.Code
}

// RequestID идентификатор последнего запроса
func (e *RegionFallbackError) RequestID() string {
	if e.Last == nil {
		return ""
	}
	return e.Last.RequestID
}

// ErrorDetails извлекает код и requestId для ответа клиенту
func ErrorDetails(err error) (code, requestID string) {
	var fbErr *RegionFallbackError
	if errors.As(err, &fbErr) {
		return fbErr.Code(), fbErr.RequestID()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.RequestID
	}
	return "", ""
}
