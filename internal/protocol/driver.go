// Package protocol runs the request/response loop over a byte stream.
//
// In whole-stream mode the entire input is one request and any failure is returned to
// the caller. In line mode every input line is an independent request: a line that
// fails, for any reason including a panic, yields an error line and the loop moves on.
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docharvest/internal/collect"
	"git.home.luguber.info/inful/docharvest/internal/foundation"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
	"git.home.luguber.info/inful/docharvest/internal/logfields"
	"git.home.luguber.info/inful/docharvest/internal/metrics"
	"git.home.luguber.info/inful/docharvest/internal/observability"
)

// Protocol modes, used as log and metric labels.
const (
	ModeWhole = "whole"
	ModeLines = "lines"
)

// Processor handles one decoded request.
type Processor interface {
	Process(ctx context.Context, req collect.Request) (collect.Response, error)
}

// Driver reads requests, hands them to a Processor and emits the results to a Sink.
type Driver struct {
	processor Processor
	sink      Sink
	recorder  metrics.Recorder
}

// NewDriver creates a Driver. A nil recorder disables metrics.
func NewDriver(processor Processor, sink Sink, recorder metrics.Recorder) *Driver {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Driver{processor: processor, sink: sink, recorder: recorder}
}

// RunWhole treats all of r as a single request and emits exactly one response. On any
// failure nothing is emitted and the error is returned.
func (d *Driver) RunWhole(ctx context.Context, r io.Reader) error {
	ctx = observability.WithMode(observability.WithRequestID(ctx, uuid.NewString()), ModeWhole)
	start := time.Now()

	err := d.whole(ctx, r)

	elapsed := time.Since(start)
	d.recorder.ObserveRequestDuration(ModeWhole, elapsed)
	if err != nil {
		d.recorder.IncRequest(ModeWhole, metrics.OutcomeFailed)
		return err
	}
	d.recorder.IncRequest(ModeWhole, metrics.OutcomeSuccess)
	observability.InfoContext(ctx, "Request processed", logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}

func (d *Driver) whole(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.WrapError(err, errors.CategoryProtocol, "read input").Build()
	}
	req, err := DecodeRequest(data)
	if err != nil {
		return err
	}
	resp, err := d.processor.Process(ctx, req)
	if err != nil {
		return err
	}
	return d.sink.Emit(resp)
}

// RunLines processes r one line at a time and emits exactly one output line per input
// line, in order. A final line without a trailing newline still counts; blank lines
// count too. Only reading the input or writing the output can stop the loop early,
// besides cancellation of ctx, which is checked between lines.
func (d *Driver) RunLines(ctx context.Context, r io.Reader) error {
	ctx = observability.WithMode(ctx, ModeLines)
	reader := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "line processing interrupted").
				WithContext("line", lineNo).
				Build()
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return errors.WrapError(readErr, errors.CategoryProtocol, "read input").
				WithContext("line", lineNo).
				Build()
		}
		if line == "" && readErr == io.EOF {
			return nil
		}

		lineCtx := observability.WithLine(observability.WithRequestID(ctx, uuid.NewString()), lineNo)
		if err := d.line(lineCtx, strings.TrimRight(line, "\r\n")); err != nil {
			return err
		}
		if readErr == io.EOF {
			return nil
		}
	}
}

// line runs one line through the pipeline and emits its outcome. The returned error is
// always an output failure.
func (d *Driver) line(ctx context.Context, text string) error {
	start := time.Now()
	result := d.step(ctx, text)
	d.recorder.ObserveRequestDuration(ModeLines, time.Since(start))

	emitErr := result.Match(
		func(resp collect.Response) error {
			d.recorder.IncRequest(ModeLines, metrics.OutcomeSuccess)
			observability.DebugContext(ctx, "Line processed", logfields.Objects(len(resp.Objects)))
			err := d.sink.Emit(resp)
			if errors.HasCategory(err, errors.CategoryInternal) {
				// The response could not be encoded; report that in its place.
				return d.sink.Emit(NewErrorLine(err))
			}
			return err
		},
		func(err error) error {
			d.recorder.IncRequest(ModeLines, metrics.OutcomeFailed)
			logFailure(ctx, err)
			return d.sink.Emit(NewErrorLine(err))
		},
	)
	if emitErr != nil {
		return fmt.Errorf("emit line %d: %w", observability.GetContext(ctx).Line, emitErr)
	}
	return nil
}

// logFailure logs a failed line. Recovered panics and internal faults are errors;
// bad requests are only warnings since the stream carries on.
func logFailure(ctx context.Context, err error) {
	attrs := []slog.Attr{logfields.Error(err), logfields.Category(string(errors.GetCategory(err)))}
	if classified, ok := errors.AsClassified(err); ok && classified.Severity() == errors.SeverityFatal {
		observability.ErrorContext(ctx, "Line failed", attrs...)
		return
	}
	observability.WarnContext(ctx, "Line failed", attrs...)
}

// step decodes and processes one line. Panics are recovered into an error carrying the
// stack of the panicking goroutine.
func (d *Driver) step(ctx context.Context, text string) (res foundation.Result[collect.Response, error]) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.RuntimeError(fmt.Sprintf("panic: %v", r)).
				WithContext("line", observability.GetContext(ctx).Line).
				Build()
			res = foundation.Err[collect.Response, error](err)
		}
	}()

	req, err := DecodeRequest([]byte(text))
	if err != nil {
		return foundation.Err[collect.Response, error](err)
	}
	resp, err := d.processor.Process(ctx, req)
	return foundation.FromTuple(resp, err)
}
