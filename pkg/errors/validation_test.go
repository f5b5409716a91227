package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateStationKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "simple", key: "Taksim"},
		{name: "unicode and spaces", key: "Kadıköy İskele"},
		{name: "empty", key: "", wantErr: true},
		{name: "blank", key: "   ", wantErr: true},
		{name: "control", key: "Tak\x00sim", wantErr: true},
		{name: "too long", key: strings.Repeat("a", 257), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStationKey("startNodeId", tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStationKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{name: "origin", lat: 0, lon: 0},
		{name: "istanbul", lat: 41.0082, lon: 28.9784},
		{name: "bounds", lat: -90, lon: 180},
		{name: "lat high", lat: 90.1, lon: 0, wantErr: true},
		{name: "lon low", lat: 0, lon: -180.5, wantErr: true},
		{name: "nan", lat: math.NaN(), lon: 0, wantErr: true},
		{name: "inf", lat: 0, lon: math.Inf(-1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCoordinate error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCoordinate) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidCoordinate)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("svg", "svg", "dot"); err != nil {
		t.Errorf("ValidateFormat(svg) = %v", err)
	}
	err := ValidateFormat("pdf", "svg", "dot")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(pdf) = %v, want INVALID_FORMAT", err)
	}
}
