package motion

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseError describes malformed motion-path text. It is fatal: a path
// that cannot be parsed in full is never partially used.
type ParseError struct {
	Line int // 1-based line number in the input text.
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("motion path line %d: %s", e.Line, e.Msg)
}

// Parse is the single entry point for the stabilizer's per-frame transform
// text. One record per frame:
//
//	Frame <index> <dx> <dy> <angle> <zoom_percent> <flag>
//
// A following comment line beginning "#" either states "no fields" (which
// marks index 0 as the reference, or any later index as missing) or carries
// "<error> <fields_count>" estimator diagnostics. Data and comment lines
// may interleave arbitrarily; any index in 0..max without a data line is
// treated as missing, except index 0 which is always the reference.
func Parse(text string) (*Path, error) {
	records := make(map[int]*FrameTransform)
	var last *FrameTransform
	lastIndex := -1

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	maxIndex := -1
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			applyComment(line, last, lastIndex)
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != "Frame" {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected record %q", fields[0])}
		}
		if len(fields) < 7 {
			return nil, &ParseError{Line: lineNo, Msg: "expected 6 fields after Frame"}
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil || index < 0 {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("invalid frame index %q", fields[1])}
		}
		if _, dup := records[index]; dup {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("duplicate frame index %d", index)}
		}
		values := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(fields[2+i], 64)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("non-numeric field %q", fields[2+i])}
			}
			values[i] = v
		}
		if _, err := strconv.ParseFloat(fields[6], 64); err != nil {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("non-numeric flag %q", fields[6])}
		}
		t := &FrameTransform{
			DX:          values[0],
			DY:          values[1],
			Angle:       values[2],
			ZoomPercent: values[3],
			FieldsCount: -1,
		}
		records[index] = t
		last = t
		lastIndex = index
		if index > maxIndex {
			maxIndex = index
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: lineNo, Msg: err.Error()}
	}
	if maxIndex < 0 {
		return nil, &ParseError{Line: lineNo, Msg: "no frame transforms"}
	}

	frames := make([]FrameTransform, maxIndex+1)
	for i := range frames {
		if rec, ok := records[i]; ok {
			frames[i] = *rec
		} else {
			frames[i] = FrameTransform{Missing: true, FieldsCount: -1}
		}
	}
	// Index 0 is the alignment target and never carries an estimate.
	frames[0].IsReference = true
	frames[0].Missing = false
	return NewPath(frames), nil
}

// applyComment attaches a "#" comment line to the most recent data record.
// Comments before any data line, and malformed diagnostics, are ignored;
// the estimator emits free-form notes alongside the structured ones.
func applyComment(line string, last *FrameTransform, lastIndex int) {
	if last == nil {
		return
	}
	comment := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if strings.HasPrefix(strings.ToLower(comment), "no fields") {
		if lastIndex == 0 {
			last.IsReference = true
			last.Missing = false
		} else {
			last.Missing = true
		}
		return
	}
	parts := strings.Fields(comment)
	if len(parts) < 2 {
		return
	}
	fieldErr, err1 := strconv.ParseFloat(parts[0], 64)
	fieldsCount, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return
	}
	last.FieldError = fieldErr
	last.FieldsCount = int(fieldsCount)
}
