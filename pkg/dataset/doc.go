// Package dataset reads and writes the station and segment files that
// describe a transit network, and builds a [network.Graph] from them.
//
// # File Formats
//
// Stations are a top-level JSON array:
//
//	[
//	  {"name": "Taksim", "latitude": 41.0369, "longitude": 28.9850, "type": "metro"},
//	  {"name": "Sisli", "latitude": 41.0602, "longitude": 28.9877}
//	]
//
// Segments are wrapped in an object:
//
//	{
//	  "segments": [
//	    {"from": "Taksim", "to": "Sisli", "tip": "metro", "sure_dk": 4, "hat": "M2", "aciklama": "Yenikapi - Haciosman"}
//	  ]
//	}
//
// The field names follow the files published by the operator. "tip" is the
// transport mode (see [network.ParseMode]), "sure_dk" the travel time in
// minutes, "hat" the line and "aciklama" a free text description.
//
// # Building
//
// [Build] turns a [Dataset] into a graph. Every station becomes a node and
// every segment becomes two directed edges weighted by the great-circle
// distance between its endpoints. Segments naming an unknown station are
// skipped and counted in the returned [Report].
//
// [Catalog] indexes segments by their (from, to) pair so a planner can attach
// line and description hints to a resolved route.
package dataset
