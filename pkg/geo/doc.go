// Package geo provides great-circle distance on a spherical Earth.
//
// Distances are computed with the haversine formula on a sphere of radius
// [EarthRadiusKm]. The result is used directly as edge weight when building
// transit networks, so the formula is kept bit-for-bit stable: changing the
// radius or the term order changes shortest-path results.
//
// # Usage
//
//	d := geo.Distance(41.0082, 28.9784, 41.0369, 28.9850) // km
//
//	a := geo.Point{Lat: 0, Lon: 0}
//	b := geo.Point{Lat: 0, Lon: 180}
//	a.DistanceTo(b) // ≈ 20015.1
package geo
