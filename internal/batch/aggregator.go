package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/schema"
)

// Dispatcher performs the physical requests for one spreadsheet. Results are
// positional: the nth result answers the nth input.
type Dispatcher interface {
	BatchGet(ctx context.Context, ranges []string, opts schema.GetOptions) ([]schema.ValueRange, error)
	BatchUpdate(ctx context.Context, data []schema.ValueRange, opts schema.WriteOptions) ([]schema.UpdateValuesResponse, error)
	BatchClear(ctx context.Context, ranges []string) ([]string, error)
	Append(ctx context.Context, data schema.ValueRange, opts schema.AppendOptions) (schema.AppendValuesResponse, error)
	Structural(ctx context.Context, reqs []schema.Request) ([]schema.Reply, error)
}

// Handle tracks one submitted operation until its flush completes.
type Handle struct {
	op     Op
	done   chan struct{}
	result Result
}

func (h *Handle) Op() Op { return h.op }

// Done is closed once the operation has a result.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the operation's flush has produced its result or ctx ends.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, h.result.Err
	case <-ctx.Done():
		return Result{}, apierr.FromContext("batch.Wait", ctx.Err())
	}
}

func (h *Handle) complete(r Result) {
	h.result = r
	close(h.done)
}

// Aggregator queues operations between flushes. Submit is safe for concurrent use.
type Aggregator struct {
	dispatcher   Dispatcher
	maxBatchSize int

	mu    sync.Mutex
	queue []*Handle
}

// NewAggregator creates an aggregator that sends at most maxBatchSize ranges or
// requests per physical call.
func NewAggregator(d Dispatcher, maxBatchSize int) *Aggregator {
	if maxBatchSize <= 0 {
		maxBatchSize = 1
	}
	return &Aggregator{dispatcher: d, maxBatchSize: maxBatchSize}
}

// Submit validates op and queues it for the next flush. Invalid operations are
// rejected here and never reach the queue.
func (a *Aggregator) Submit(op Op) (*Handle, error) {
	if op == nil {
		return nil, apierr.New(apierr.KindSchemaValidation, "batch.Submit", "operation is nil")
	}
	if err := op.validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	h := &Handle{op: op, done: make(chan struct{})}
	a.queue = append(a.queue, h)
	return h, nil
}

// Pending returns the number of operations waiting for a flush.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Flush dispatches everything submitted so far. Operations submitted while a
// flush runs wait for the next one. The error is a *PartialError when any
// operation failed; Results holds every outcome either way.
func (a *Aggregator) Flush(ctx context.Context) (Results, error) {
	a.mu.Lock()
	snapshot := a.queue
	a.queue = nil
	a.mu.Unlock()

	results := newResults(snapshot)
	if len(snapshot) == 0 {
		return results, nil
	}

	stages := planStages(snapshot)
	log.Debug().
		Int("operations", len(snapshot)).
		Int("stages", len(stages)).
		Int("max_batch_size", a.maxBatchSize).
		Msg("Flushing batch")

	for _, st := range stages {
		a.runStage(ctx, st)
	}

	for _, h := range snapshot {
		results.set(h)
	}
	return results, results.Err()
}

// groupKey holds everything that must be uniform inside one physical request.
type groupKey struct {
	endpoint endpoint
	get      schema.GetOptions
	write    schema.WriteOptions
}

type group struct {
	key     groupKey
	handles []*Handle
}

func keyOf(op Op) groupKey {
	key := groupKey{endpoint: op.endpoint()}
	switch op := op.(type) {
	case GetOp:
		key.get = op.Options
	case UpdateOp:
		key.write = op.Options
	}
	return key
}

// stage is a set of groups sent together. Stages run one after another in
// submission order. A read stage holds consecutive reads bucketed by options,
// sent concurrently. A mutating stage holds one group of consecutive
// mutations that share a key.
type stage []*group

// planStages splits handles into stages so that no operation is sent before
// an earlier mutation, and no mutation before an earlier read. Handles keep
// submission order within each group.
func planStages(handles []*Handle) []stage {
	var stages []stage
	var reads map[groupKey]*group
	for _, h := range handles {
		key := keyOf(h.op)
		mutating := key.endpoint.mutating()

		if n := len(stages); n > 0 {
			last := stages[n-1]
			lastMutating := last[0].key.endpoint.mutating()
			switch {
			case !mutating && !lastMutating:
				if grp, ok := reads[key]; ok {
					grp.handles = append(grp.handles, h)
				} else {
					added := &group{key: key, handles: []*Handle{h}}
					reads[key] = added
					stages[n-1] = append(last, added)
				}
				continue
			case mutating && lastMutating && last[0].key == key:
				last[0].handles = append(last[0].handles, h)
				continue
			}
		}

		grp := &group{key: key, handles: []*Handle{h}}
		if !mutating {
			reads = map[groupKey]*group{key: grp}
		}
		stages = append(stages, stage{grp})
	}
	return stages
}

func (a *Aggregator) runStage(ctx context.Context, st stage) {
	if len(st) == 1 {
		a.runGroup(ctx, st[0])
		return
	}
	var g errgroup.Group
	for _, grp := range st {
		g.Go(func() error {
			a.runGroup(ctx, grp)
			return nil
		})
	}
	_ = g.Wait()
}

func (a *Aggregator) chunks(grp *group) [][]*Handle {
	size := a.maxBatchSize
	switch grp.key.endpoint {
	case endpointAppend:
		size = 1
	case endpointStructural:
		// spreadsheets.batchUpdate is applied atomically; splitting it would not be.
		size = len(grp.handles)
	}
	var out [][]*Handle
	for start := 0; start < len(grp.handles); start += size {
		end := start + size
		if end > len(grp.handles) {
			end = len(grp.handles)
		}
		out = append(out, grp.handles[start:end])
	}
	return out
}

// runGroup sends a group's chunks one after another. A failed chunk fails its
// own operations only.
func (a *Aggregator) runGroup(ctx context.Context, grp *group) {
	for i, chunk := range a.chunks(grp) {
		log.Debug().
			Str("endpoint", grp.key.endpoint.String()).
			Int("chunk", i).
			Int("operations", len(chunk)).
			Msg("Dispatching batch chunk")

		if err := a.dispatch(ctx, grp.key, chunk); err != nil {
			log.Warn().
				Err(err).
				Str("endpoint", grp.key.endpoint.String()).
				Int("chunk", i).
				Int("operations", len(chunk)).
				Msg("Batch chunk failed")
			for _, h := range chunk {
				h.complete(Result{Err: err})
			}
		}
	}
}

// dispatch sends one chunk and completes its handles on success.
func (a *Aggregator) dispatch(ctx context.Context, key groupKey, chunk []*Handle) error {
	switch key.endpoint {
	case endpointBatchGet:
		ranges := make([]string, len(chunk))
		for i, h := range chunk {
			ranges[i] = h.op.(GetOp).Range
		}
		values, err := a.dispatcher.BatchGet(ctx, ranges, key.get)
		if err != nil {
			return err
		}
		if err := checkCount(key.endpoint, len(values), len(chunk)); err != nil {
			return err
		}
		for i, h := range chunk {
			v := values[i]
			h.complete(Result{Values: &v})
		}

	case endpointBatchUpdate:
		data := make([]schema.ValueRange, len(chunk))
		for i, h := range chunk {
			data[i] = h.op.(UpdateOp).Data
		}
		responses, err := a.dispatcher.BatchUpdate(ctx, data, key.write)
		if err != nil {
			return err
		}
		if err := checkCount(key.endpoint, len(responses), len(chunk)); err != nil {
			return err
		}
		for i, h := range chunk {
			r := responses[i]
			h.complete(Result{Update: &r})
		}

	case endpointAppend:
		for _, h := range chunk {
			op := h.op.(AppendOp)
			resp, err := a.dispatcher.Append(ctx, op.Data, op.Options)
			if err != nil {
				return err
			}
			h.complete(Result{Append: &resp})
		}

	case endpointBatchClear:
		ranges := make([]string, len(chunk))
		for i, h := range chunk {
			ranges[i] = h.op.(ClearOp).Range
		}
		cleared, err := a.dispatcher.BatchClear(ctx, ranges)
		if err != nil {
			return err
		}
		for i, h := range chunk {
			// The server may omit ranges that were already empty; fall back to the request.
			r := ranges[i]
			if i < len(cleared) {
				r = cleared[i]
			}
			h.complete(Result{ClearedRange: r})
		}

	case endpointStructural:
		reqs := make([]schema.Request, len(chunk))
		for i, h := range chunk {
			reqs[i] = h.op.(StructuralOp).Request
		}
		replies, err := a.dispatcher.Structural(ctx, reqs)
		if err != nil {
			return err
		}
		for i, h := range chunk {
			var r schema.Reply
			if i < len(replies) {
				r = replies[i]
			}
			h.complete(Result{Reply: &r})
		}
	}
	return nil
}

func checkCount(e endpoint, got, want int) error {
	if got != want {
		return apierr.New(apierr.KindUnknown, e.String(), "server returned %d results for %d operations", got, want)
	}
	return nil
}

// Results holds the outcome of every operation in one flush, in submission order.
type Results struct {
	handles []*Handle
	byID    map[*Handle]Result
}

func newResults(handles []*Handle) Results {
	return Results{handles: handles, byID: make(map[*Handle]Result, len(handles))}
}

func (r Results) set(h *Handle) {
	r.byID[h] = h.result
}

// Get returns the result for h, or false if h was not part of this flush.
func (r Results) Get(h *Handle) (Result, bool) {
	res, ok := r.byID[h]
	return res, ok
}

func (r Results) Len() int { return len(r.handles) }

// All returns every result in submission order.
func (r Results) All() []Result {
	out := make([]Result, len(r.handles))
	for i, h := range r.handles {
		out[i] = r.byID[h]
	}
	return out
}

// Err returns a *PartialError if any operation failed.
func (r Results) Err() error {
	errs := make([]error, len(r.handles))
	failed := 0
	for i, h := range r.handles {
		if err := r.byID[h].Err; err != nil {
			errs[i] = err
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return &PartialError{Errors: errs, failed: failed}
}

// PartialError reports which operations of a batch failed. Errors is aligned
// with submission order and holds nil for operations that succeeded.
// errors.As and apierr.KindOf see the first failure.
type PartialError struct {
	Errors []error
	failed int
}

func (e *PartialError) Failed() int { return e.failed }

func (e *PartialError) Error() string {
	var first string
	for i, err := range e.Errors {
		if err != nil {
			first = fmt.Sprintf("operation %d: %v", i, err)
			break
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d batch operations failed", e.failed, len(e.Errors))
	if first != "" {
		b.WriteString("; first: ")
		b.WriteString(first)
	}
	return b.String()
}

func (e *PartialError) Unwrap() []error {
	out := make([]error, 0, e.failed)
	for _, err := range e.Errors {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
