package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/routetrace/pkg/errors"
)

type segmentFile struct {
	Segments []Segment `json:"segments"`
}

// ReadStations decodes a stations array from r. ReadStations does not close r.
func ReadStations(r io.Reader) ([]Station, error) {
	var out []Station
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode stations")
	}
	return out, nil
}

// ReadSegments decodes a {"segments": [...]} object from r.
// ReadSegments does not close r.
func ReadSegments(r io.Reader) ([]Segment, error) {
	var data segmentFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode segments")
	}
	return data.Segments, nil
}

// Import reads the stations and segments files and validates the result.
func Import(stationsPath, segmentsPath string) (*Dataset, error) {
	stations, err := readFile(stationsPath, ReadStations)
	if err != nil {
		return nil, err
	}
	segments, err := readFile(segmentsPath, ReadSegments)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Stations: stations, Segments: segments}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
