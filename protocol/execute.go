// SPDX-License-Identifier: MIT

package protocol

import "fmt"

// ExecFunc evaluates one request. Execute is the production implementation;
// tests substitute their own to inject faults.
type ExecFunc func(Request) Reply

// Execute evaluates req. It never panics on well-formed input and reports an
// unknown tag through Reply.Err.
func Execute(req Request) Reply {
	rep := Reply{Index: req.Index, Op: req.Op}
	switch req.Op {
	case OpAdd:
		rep.Result = req.Operand1 + req.Operand2
	case OpSubtract:
		rep.Result = req.Operand1 - req.Operand2
	case OpDotProduct, OpMatVec:
		if len(req.Row) != len(req.Col) {
			rep.Err = fmt.Errorf("%s: %w", req.Op, ErrLengthMismatch)
			break
		}
		acc := 0.0
		for i := range req.Row {
			acc += req.Row[i] * req.Col[i]
		}
		rep.Result = acc
	case OpDeterminant2x2:
		b := req.Block
		rep.Result = b[0][0]*b[1][1] - b[0][1]*b[1][0]
	default:
		rep.Err = fmt.Errorf("%s: %w", req.Op, ErrUnknownOp)
	}

	return rep
}

// Serve runs the executor loop: receive from in, evaluate with exec, send to
// out. It returns nil after an OpExit request or when in is closed, and
// ErrExecutorCrashed if exec panics. out is closed on every return path so a
// reader blocked on it always wakes.
func Serve(exec ExecFunc, in <-chan Request, out chan<- Reply) (err error) {
	if exec == nil {
		exec = Execute
	}
	defer close(out)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutorCrashed, r)
		}
	}()

	for req := range in {
		if req.Op == OpExit {
			return nil
		}
		out <- exec(req)
	}

	return nil
}
