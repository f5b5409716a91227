package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteStations encodes stations as an indented JSON array.
// The output can be read back with [ReadStations].
func WriteStations(stations []Station, w io.Writer) error {
	if stations == nil {
		stations = []Station{}
	}
	return writeIndented(w, stations)
}

// WriteSegments encodes segments wrapped in a {"segments": [...]} object.
func WriteSegments(segments []Segment, w io.Writer) error {
	if segments == nil {
		segments = []Segment{}
	}
	return writeIndented(w, segmentFile{Segments: segments})
}

// Export writes both files of ds.
func Export(ds *Dataset, stationsPath, segmentsPath string) error {
	if err := writeFile(stationsPath, func(w io.Writer) error { return WriteStations(ds.Stations, w) }); err != nil {
		return err
	}
	return writeFile(segmentsPath, func(w io.Writer) error { return WriteSegments(ds.Segments, w) })
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
