// Package planner decides the per-clip stabilization action from the
// parsed motion path alone: reject the motion estimate, stabilize with a
// single static crop, fall back to a budgeted border fill, or declare the
// clip unsuitable. The decision is pure geometry and statistics; no
// ffmpeg process runs here, which keeps the whole state machine testable
// with synthetic motion paths.
package planner
