package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	name   string
	result Result
	err    error
	calls  *[]string
}

func (f fakeStrategy) Name() string {
	return f.name
}

func (f fakeStrategy) Do(ctx context.Context, req Request) (Result, error) {
	*f.calls = append(*f.calls, f.name)
	if f.err != nil {
		return Result{}, f.err
	}
	return f.result, nil
}

func TestDispatchFallsThrough(t *testing.T) {
	var calls []string
	proxyErr := fmt.Errorf("proxy refused connection")

	d := New(
		fakeStrategy{name: "a", err: proxyErr, calls: &calls},
		fakeStrategy{name: "b", result: Result{StatusCode: 200, Body: `{"ok":true}`}, calls: &calls},
		fakeStrategy{name: "c", result: Result{StatusCode: 500}, calls: &calls},
	)

	res, err := d.Dispatch(context.Background(), Request{Method: "POST"})
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	require.Equal(t, `{"ok":true}`, res.Body)
	require.Equal(t, []string{"a", "b"}, calls)
}

func TestDispatchErrorStatusIsSuccess(t *testing.T) {
	var calls []string
	d := New(
		fakeStrategy{name: "a", result: Result{StatusCode: 403, Body: "denied"}, calls: &calls},
		fakeStrategy{name: "b", result: Result{StatusCode: 200}, calls: &calls},
	)

	res, err := d.Dispatch(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, 403, res.StatusCode)
	require.False(t, res.Success())
	require.Equal(t, []string{"a"}, calls)
}

func TestDispatchExhausted(t *testing.T) {
	var calls []string
	errA := fmt.Errorf("tls handshake timeout")
	errB := fmt.Errorf("connection reset")
	errC := fmt.Errorf("no such host")

	d := New(
		fakeStrategy{name: "a", err: errA, calls: &calls},
		fakeStrategy{name: "b", err: errB, calls: &calls},
		fakeStrategy{name: "c", err: errC, calls: &calls},
	)

	_, err := d.Dispatch(context.Background(), Request{})
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	require.Len(t, exhausted.Attempts, 3)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.ErrorIs(t, err, errC)

	require.Contains(t, err.Error(), "tls handshake timeout")
	require.Contains(t, err.Error(), "connection reset")
	require.Contains(t, err.Error(), "c: no such host")
	require.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestDispatchNoStrategies(t *testing.T) {
	_, err := New().Dispatch(context.Background(), Request{})
	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	require.Equal(t, "no transport strategies configured", err.Error())
}

func TestDispatchCancelledContext(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(
		fakeStrategy{name: "a", result: Result{StatusCode: 200}, calls: &calls},
	)
	_, err := d.Dispatch(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, calls)
}

func TestStrategies(t *testing.T) {
	var calls []string
	d := New(
		fakeStrategy{name: "hardened", calls: &calls},
		fakeStrategy{name: "fetch", calls: &calls},
	)
	diff := cmp.Diff([]string{"hardened", "fetch"}, d.Strategies())
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestResultSuccess(t *testing.T) {
	testCases := []struct {
		status   int
		expected bool
	}{
		{status: 199, expected: false},
		{status: 200, expected: true},
		{status: 204, expected: true},
		{status: 299, expected: true},
		{status: 300, expected: false},
		{status: 404, expected: false},
		{status: 503, expected: false},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Result{StatusCode: test.status}.Success(), "status %d", test.status)
	}
}
