// SPDX-License-Identifier: MIT

// Package config holds the numeric and execution policy shared by every
// synthesis stage.
//
// A Config is a plain value passed into each call; there is no package-level
// state, so concurrent compilations with different tolerances never interfere.
// Three ways to obtain one:
//
//	cfg := config.Default()
//	cfg := config.New(config.WithTolerance(1e-8), config.WithMaxQubits(6))
//	cfg, err := config.Load(r) // YAML overlay on Default(), then Validate
//
// WithX constructors panic on nonsensical values (programmer error); Load and
// Validate report the same conditions as ErrInvalidConfig.
package config
