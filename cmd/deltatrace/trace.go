package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unsafe"

	"github.com/kmarq/deltaheap/heap"
	"github.com/kmarq/deltaheap/internal/pageprovider"
)

// op is one parsed line of a trace file:
//
//	a <id> <size>       alloc
//	f <id>              free
//	r <id> <size>       realloc
//	c <id> <nmemb> <size>  calloc
type op struct {
	kind   byte
	id     string
	a, b   int
	lineNo int
}

func parseTrace(r io.Reader) ([]op, error) {
	var ops []op
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		o := op{kind: fields[0][0], lineNo: lineNo}
		switch o.kind {
		case 'a':
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: alloc wants 2 args, got %q", lineNo, line)
			}
			o.id = fields[1]
			size, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size: %w", lineNo, err)
			}
			o.a = size
		case 'f':
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: free wants 1 arg, got %q", lineNo, line)
			}
			o.id = fields[1]
		case 'r':
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: realloc wants 2 args, got %q", lineNo, line)
			}
			o.id = fields[1]
			size, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size: %w", lineNo, err)
			}
			o.a = size
		case 'c':
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: calloc wants 3 args, got %q", lineNo, line)
			}
			o.id = fields[1]
			nmemb, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad nmemb: %w", lineNo, err)
			}
			size, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size: %w", lineNo, err)
			}
			o.a, o.b = nmemb, size
		default:
			return nil, fmt.Errorf("line %d: unknown op %q", lineNo, fields[0])
		}
		ops = append(ops, o)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// replayResult summarizes one trace replay.
type replayResult struct {
	ops        int
	violations []error
}

// replay executes ops against a freshly-constructed Heap, optionally
// running the consistency checker after every operation. It stops at the
// first line that fails to allocate/reallocate when the trace didn't
// expect failure, reporting the offending line.
func replay(ops []op, verify bool) (*replayResult, error) {
	pp := pageprovider.NewSliceProvider(heapBytes)
	h, err := heap.New(pp)
	if err != nil {
		return nil, fmt.Errorf("initializing heap: %w", err)
	}
	h.SetLogger(logger)

	live := make(map[string]unsafe.Pointer)
	result := &replayResult{}

	checkNow := func(lineNo int) error {
		if !verify {
			return nil
		}
		if errs := h.Check(false); len(errs) > 0 {
			result.violations = append(result.violations, errs...)
			return fmt.Errorf("line %d: heap check failed: %w", lineNo, errs[0])
		}
		return nil
	}

	for _, o := range ops {
		result.ops++
		switch o.kind {
		case 'a':
			p := h.Alloc(o.a)
			if p == nil {
				return result, fmt.Errorf("line %d: alloc(%d) failed", o.lineNo, o.a)
			}
			live[o.id] = p
		case 'f':
			h.Free(live[o.id])
			delete(live, o.id)
		case 'r':
			p := h.Realloc(live[o.id], o.a)
			if o.a > 0 && p == nil {
				return result, fmt.Errorf("line %d: realloc(%d) failed", o.lineNo, o.a)
			}
			live[o.id] = p
		case 'c':
			p := h.Calloc(o.a, o.b)
			if p == nil {
				return result, fmt.Errorf("line %d: calloc(%d, %d) failed", o.lineNo, o.a, o.b)
			}
			live[o.id] = p
		}
		if err := checkNow(o.lineNo); err != nil {
			return result, err
		}
	}

	if !verify {
		if errs := h.Check(false); len(errs) > 0 {
			result.violations = errs
		}
	}

	return result, nil
}
