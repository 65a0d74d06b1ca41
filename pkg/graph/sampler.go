// Package graph samples a program as a function of one variable for
// plotting. It knows nothing about pixels; callers map columns to screen
// coordinates themselves.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/format"
	"github.com/leapstack-labs/rpncalc/pkg/program"
)

// DefaultVariable is the variable bound to the x coordinate.
const DefaultVariable = "x"

// minChunk keeps goroutines from being spawned for a handful of columns.
const minChunk = 64

// ErrInvalidSampler is returned for sampler settings that cannot produce
// a curve.
var ErrInvalidSampler = errors.New("invalid sampler")

// Domain is the closed x interval to sample.
type Domain struct {
	Min float64
	Max float64
}

// Width returns Max - Min.
func (d Domain) Width() float64 {
	return d.Max - d.Min
}

// Point is one sample. Defined is false where y is NaN or infinite.
type Point struct {
	X       float64
	Y       float64
	Defined bool
}

// Sampler evaluates a program across a domain.
type Sampler struct {
	Domain   Domain
	Columns  int
	Variable string
	DotMode  bool

	// Bindings supplies values for variables other than Variable.
	Bindings eval.Bindings
	// Undefined is the policy for variables without a binding.
	Undefined eval.UndefinedPolicy

	Logger *slog.Logger
}

// Validate checks the sampler settings.
func (s *Sampler) Validate() error {
	switch {
	case s.Columns < 1:
		return fmt.Errorf("%w: columns must be at least 1, got %d", ErrInvalidSampler, s.Columns)
	case math.IsNaN(s.Domain.Min) || math.IsNaN(s.Domain.Max) ||
		math.IsInf(s.Domain.Min, 0) || math.IsInf(s.Domain.Max, 0):
		return fmt.Errorf("%w: domain bounds must be finite", ErrInvalidSampler)
	case s.Domain.Max <= s.Domain.Min:
		return fmt.Errorf("%w: x max %g must be greater than x min %g", ErrInvalidSampler, s.Domain.Max, s.Domain.Min)
	case s.variable() == "":
		return fmt.Errorf("%w: empty variable name", ErrInvalidSampler)
	}
	return nil
}

func (s *Sampler) variable() string {
	if s.Variable == "" {
		return DefaultVariable
	}
	return s.Variable
}

// XAt returns the x value of column i. Columns are spread evenly from
// Min to Max inclusive; a single column samples Min.
func (s *Sampler) XAt(i int) float64 {
	if s.Columns <= 1 {
		return s.Domain.Min
	}
	return s.Domain.Min + s.Domain.Width()*float64(i)/float64(s.Columns-1)
}

// Sample evaluates p once per column with the sampler's variable bound to
// the column's x value. It returns exactly Columns points.
func (s *Sampler) Sample(ctx context.Context, p program.Program) ([]Point, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	points := make([]Point, s.Columns)
	workers := max(1, min(runtime.GOMAXPROCS(0), s.Columns/minChunk))
	chunk := (s.Columns + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < s.Columns; start += chunk {
		end := min(start+chunk, s.Columns)
		g.Go(func() error {
			return s.sampleRange(gctx, p, points[start:end], start)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sampling interrupted: %w", err)
	}

	logger.Debug("sampled program",
		"columns", s.Columns,
		"workers", workers,
		"x_min", s.Domain.Min,
		"x_max", s.Domain.Max)
	return points, nil
}

// sampleRange fills out with columns [offset, offset+len(out)). Each call
// owns its evaluator and bindings.
func (s *Sampler) sampleRange(ctx context.Context, p program.Program, out []Point, offset int) error {
	ev := eval.New(eval.WithUndefined(s.Undefined))
	bindings := make(eval.Bindings, len(s.Bindings)+1)
	for k, v := range s.Bindings {
		bindings[k] = v
	}
	name := s.variable()

	for i := range out {
		if i%minChunk == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		x := s.XAt(offset + i)
		bindings[name] = x
		y := ev.Run(p, bindings)
		out[i] = Point{X: x, Y: y, Defined: !math.IsNaN(y) && !math.IsInf(y, 0)}
	}
	return nil
}

// Segments splits points into the runs a plotter would connect with lines.
// Undefined points break the curve. In dot mode every defined point is a
// segment of its own.
func Segments(points []Point, dotMode bool) [][]Point {
	var segments [][]Point
	var current []Point
	for _, pt := range points {
		if !pt.Defined {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		if dotMode {
			segments = append(segments, []Point{pt})
			continue
		}
		current = append(current, pt)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// Title returns the heading for the plot of p: "y = " followed by the
// trailing expression.
func Title(p program.Program) string {
	return "y = " + format.DescribeLast(p)
}

// Range returns the smallest and largest defined y. ok is false if no
// point is defined.
func Range(points []Point) (lo, hi float64, ok bool) {
	for _, pt := range points {
		if !pt.Defined {
			continue
		}
		if !ok {
			lo, hi, ok = pt.Y, pt.Y, true
			continue
		}
		lo = min(lo, pt.Y)
		hi = max(hi, pt.Y)
	}
	return lo, hi, ok
}
