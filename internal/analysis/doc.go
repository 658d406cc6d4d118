// Package analysis inspects recorded run series.
//
//   - [PowerSpectrum]: magnitude spectrum of a mean-removed series
//   - [DominantPeriod]: period of the strongest spectral peak
//   - [CrossingPeriod]: mean interval between upward threshold crossings
//   - [Portrait]: 2-D phase portrait (angle against angular velocity for a
//     dipole) rendered as ASCII
//
// # Libration
//
// A dipole released at a small angle in a near-uniform field swings about
// the field direction. Both period estimates should agree:
//
//	p1, _ := analysis.DominantPeriod(angle, dt)
//	p2, _ := analysis.CrossingPeriod(angle, dt, analysis.Mean(angle))
package analysis
