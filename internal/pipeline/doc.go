// Package pipeline orchestrates a single stabilization run end to end:
// probe, cached motion analysis, global-motions derivation, the
// feasibility decision, the optional render, and the report sidecar.
//
// Every terminal state writes the report before returning, including
// failures. The report is the machine-readable outcome; the process exit
// status only mirrors it.
package pipeline
