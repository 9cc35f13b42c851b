// Package ffmpeg builds and executes the ffmpeg invocations behind both
// stabilization passes: the vidstabdetect analysis pass, the synthetic
// global-motions derivation, the fill-color patch sampler, and the final
// vidstabtransform render in crop-only or border-fill form.
//
// Every invocation goes through [Execute], which captures stderr for
// error reporting and tees it to the terminal in verbose mode. Filter
// graph construction lives next to the command that uses it: detect.go,
// motions.go, sample.go, render.go.
package ffmpeg
