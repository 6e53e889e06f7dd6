// Package batch queues logical Sheets operations and dispatches them as few
// physical requests as the endpoints and the batch size policy allow.
package batch

import (
	"sheets_quota_client/internal/apierr"
	"sheets_quota_client/internal/domain/a1"
	"sheets_quota_client/internal/domain/schema"
)

// Op is one logical operation: GetOp, UpdateOp, AppendOp, ClearOp or StructuralOp.
type Op interface {
	endpoint() endpoint
	validate() error
}

// GetOp reads one range through values:batchGet.
type GetOp struct {
	Range   string
	Options schema.GetOptions
}

// UpdateOp writes one range through values:batchUpdate.
type UpdateOp struct {
	Data    schema.ValueRange
	Options schema.WriteOptions
}

// AppendOp appends after the table found in Data.Range. There is no batch
// endpoint for appends, so each one is its own physical request.
type AppendOp struct {
	Data    schema.ValueRange
	Options schema.AppendOptions
}

// ClearOp clears one range through values:batchClear.
type ClearOp struct {
	Range string
}

// StructuralOp is one spreadsheets:batchUpdate request.
type StructuralOp struct {
	Request schema.Request
}

type endpoint int

const (
	endpointBatchGet endpoint = iota
	endpointBatchUpdate
	endpointAppend
	endpointBatchClear
	endpointStructural
)

func (e endpoint) String() string {
	switch e {
	case endpointBatchGet:
		return "values:batchGet"
	case endpointBatchUpdate:
		return "values:batchUpdate"
	case endpointAppend:
		return "values:append"
	case endpointBatchClear:
		return "values:batchClear"
	case endpointStructural:
		return "spreadsheets:batchUpdate"
	default:
		return "unknown"
	}
}

// mutating endpoints order a flush: nothing submitted after one is sent before it.
func (e endpoint) mutating() bool {
	return e != endpointBatchGet
}

func (GetOp) endpoint() endpoint        { return endpointBatchGet }
func (UpdateOp) endpoint() endpoint     { return endpointBatchUpdate }
func (AppendOp) endpoint() endpoint     { return endpointAppend }
func (ClearOp) endpoint() endpoint      { return endpointBatchClear }
func (StructuralOp) endpoint() endpoint { return endpointStructural }

func (o GetOp) validate() error {
	if _, err := a1.Parse(o.Range); err != nil {
		return err
	}
	return o.Options.Validate()
}

func (o UpdateOp) validate() error {
	if err := o.Options.Validate(); err != nil {
		return err
	}
	return o.Data.Validate()
}

func (o AppendOp) validate() error {
	if err := o.Options.Validate(); err != nil {
		return err
	}
	return o.Data.Validate()
}

func (o ClearOp) validate() error {
	_, err := a1.Parse(o.Range)
	return err
}

func (o StructuralOp) validate() error {
	if o.Request == nil {
		return apierr.New(apierr.KindSchemaValidation, "batch.Submit", "structural request is nil")
	}
	// Encoding catches request types the wire model does not know.
	_, err := schema.EncodeRequests([]schema.Request{o.Request})
	return err
}

// Result is the outcome of one logical operation. Exactly one of the value
// fields is set on success, matching the operation type.
type Result struct {
	Values       *schema.ValueRange
	Update       *schema.UpdateValuesResponse
	Append       *schema.AppendValuesResponse
	ClearedRange string
	Reply        *schema.Reply
	Err          error
}
