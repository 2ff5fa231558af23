// Package efficiency computes the absolute photon-detection efficiency of a
// cylindrical scintillation detector.
//
// The detector is a right cylinder of thickness H and radius R whose front
// face sits a distance b from the source plane. For a point source offset m
// from the detector axis, [Model.Point] integrates the absorption
// probability over the polar direction cosine mu and the azimuth phi:
//
//   - rays with mu in [mu1, 1] cross the full thickness: F1 = 1 - exp(-T H / mu)
//   - rays with mu in [mu2, mu1] leave through the curved side:
//     F2 = 1 - exp(-T (s / sqrt(1 - mu^2) - b / mu))
//
// where s(phi) is the radial chord on the detector face. [Model.Disk]
// averages the point result over a uniform disk source of radius g.
//
// # Example
//
//	geo := efficiency.Geometry{Thickness: 7.62, Gap: 1, Radius: 3.72, SourceRadius: 1}
//	eps, err := efficiency.DiskSource(0.2115, geo)
//
// All computations are pure; a [Model] may be shared between goroutines.
package efficiency
