package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxStationKeyLen bounds station keys accepted from request input.
const maxStationKeyLen = 256

// ValidateStationKey checks a station key received from user input.
// Keys are display names, so spaces and non-ASCII letters are allowed;
// control characters and oversized values are not.
func ValidateStationKey(field, key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}
	if len(key) > maxStationKeyLen {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxStationKeyLen)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateCoordinate checks that lat/lon are finite and within range.
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return New(ErrCodeInvalidCoordinate, "coordinate must be finite")
	}
	if lat < -90 || lat > 90 {
		return New(ErrCodeInvalidCoordinate, "latitude %.6f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return New(ErrCodeInvalidCoordinate, "longitude %.6f out of range [-180, 180]", lon)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}
