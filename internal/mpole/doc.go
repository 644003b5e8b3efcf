// Package mpole defines the core value types for polarizable multipole
// electrostatics: 3-vectors, permanent multipoles, particle parameters,
// local-frame axis definitions and pairwise exception scales.
package mpole
