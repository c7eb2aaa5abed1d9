// Package services implements the driving port interfaces.
// Services contain the core business logic: the staged suggestion
// pipeline, evidence assembly, prompt rendering, and model output
// validation. They orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external dependencies beyond the ports.
package services
