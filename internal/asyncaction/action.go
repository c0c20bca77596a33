package asyncaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Kind identifies which variant of an Action is active.
type Kind int

const (
	KindUninitialized Kind = iota
	KindConfirming
	KindLoading
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindUninitialized:
		return "uninitialized"
	case KindConfirming:
		return "confirming"
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrUnknown stands in for a nil error handed to Failure.
var ErrUnknown = errors.New("asyncaction: unknown failure")

// Unit is the payload of actions that only report completion.
type Unit struct{}

// Action is the lifecycle of one user-triggered asynchronous operation.
// The zero value is Uninitialized.
type Action[T any] struct {
	kind  Kind
	value T
	err   error
}

// Uninitialized returns an action that has not started.
func Uninitialized[T any]() Action[T] {
	return Action[T]{}
}

// Confirming returns an action waiting for the user to confirm.
func Confirming[T any]() Action[T] {
	return Action[T]{kind: KindConfirming}
}

// Loading returns an action whose operation is in flight.
func Loading[T any]() Action[T] {
	return Action[T]{kind: KindLoading}
}

// Success returns a completed action carrying value.
func Success[T any](value T) Action[T] {
	return Action[T]{kind: KindSuccess, value: value}
}

// Failure returns a failed action. A nil err is replaced by ErrUnknown.
func Failure[T any](err error) Action[T] {
	if err == nil {
		err = ErrUnknown
	}
	return Action[T]{kind: KindFailure, err: err}
}

// Kind reports the active variant.
func (a Action[T]) Kind() Kind { return a.kind }

func (a Action[T]) IsUninitialized() bool { return a.kind == KindUninitialized }
func (a Action[T]) IsConfirming() bool    { return a.kind == KindConfirming }
func (a Action[T]) IsLoading() bool       { return a.kind == KindLoading }
func (a Action[T]) IsSuccess() bool       { return a.kind == KindSuccess }
func (a Action[T]) IsFailure() bool       { return a.kind == KindFailure }

// IsTerminal reports whether the action ended in Success or Failure.
func (a Action[T]) IsTerminal() bool {
	return a.kind == KindSuccess || a.kind == KindFailure
}

// Value returns the Success payload.
func (a Action[T]) Value() (T, bool) {
	if a.kind != KindSuccess {
		var zero T
		return zero, false
	}
	return a.value, true
}

// Err returns the Failure error, nil for every other variant.
func (a Action[T]) Err() error {
	if a.kind != KindFailure {
		return nil
	}
	return a.err
}

func (a Action[T]) String() string {
	switch a.kind {
	case KindSuccess:
		return fmt.Sprintf("success(%v)", a.value)
	case KindFailure:
		return fmt.Sprintf("failure(%v)", a.err)
	default:
		return a.kind.String()
	}
}

// Run executes fn and folds its outcome into Success or Failure. A panic
// inside fn is recovered and reported as a Failure.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) Action[T] {
	var (
		catcher panics.Catcher
		value   T
		err     error
	)
	catcher.Try(func() {
		value, err = fn(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return Failure[T](recovered.AsError())
	}
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}
