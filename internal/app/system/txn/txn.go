// Package txn runs multi-document units of work in a MongoDB transaction.
//
// Store calls made with the ctx handed to the callback join the session's
// transaction. The driver's WithTransaction retries the callback on
// TransientTransactionError and retries the commit on
// UnknownTransactionCommitResult, which is the conflict retry the services
// rely on; nothing here adds another retry loop.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// Runner is a docstore.Transactor backed by a Mongo client.
type Runner struct {
	client  *mongo.Client
	log     *zap.Logger
	require bool
}

// NewRunner builds a Runner. When require is false and the deployment cannot
// run transactions (standalone mongod), callbacks run without one after a
// warning. Production sets require.
func NewRunner(client *mongo.Client, logger *zap.Logger, require bool) *Runner {
	return &Runner{client: client, log: logger, require: require}
}

// Run implements docstore.Transactor.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, r.client, r.log, r.require, fn)
}

// Run executes fn inside a snapshot/majority transaction.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, require bool, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if shouldFallback(err, require) {
			warnFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	if err != nil && shouldFallback(err, require) {
		warnFallback(log, err)
		return fn(ctx)
	}
	return err
}

func shouldFallback(err error, require bool) bool {
	return !require && IsNotSupported(err)
}

func warnFallback(log *zap.Logger, err error) {
	if log != nil {
		log.Warn("transactions not supported; running without one", zap.Error(err))
	}
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone server, or an operation illegal in a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, NotAReplicaSet variants, OperationNotSupportedInTransaction
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
