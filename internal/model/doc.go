// Package model defines the domain types for the reelcheck build tooling.
//
// This package contains pure data structures with no external dependencies:
// the pipeline stage identifiers (StageID), the CLI exit-code contract
// (ExitCode), and a custom error type (BuildError) that carries exit codes
// so the CLI layer can translate stage failures into OS process exit codes.
package model
