package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/careercoach-backend/internal/data/aggregates"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
)

// InjectedTxRunner wraps another runner (or runs bodies without a transaction
// when Inner is nil) and injects failures.
//
// FailOnCall selects which transaction, counting from 1, gets FailBegin and
// FailCommit; zero applies them to every transaction.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin  error
	FailOnCall int
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	call := r.BeginCalls
	failBegin, failCommit := r.FailBegin, r.FailCommit
	if r.FailOnCall > 0 && call != r.FailOnCall {
		failBegin, failCommit = nil, nil
	}
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}

	body := fn
	if failCommit != nil {
		body = func(dbc dbctx.Context) error {
			if err := fn(dbc); err != nil {
				return err
			}
			return failCommit
		}
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
