package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeFetcher_ServesInOrder(t *testing.T) {
	f := NewFakeFetcher(Products())

	got, err := f.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summaries(Products()), got)
	assert.Equal(t, 1, f.ListCalls())

	p, err := f.GetProductByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Gorgeous Ball", p.Name)

	_, err = f.GetProductByID(context.Background(), 42)
	assert.ErrorContains(t, err, "not found")
	assert.Equal(t, 2, f.DetailCalls())
}

func TestFakeFetcher_Failures(t *testing.T) {
	f := NewFakeFetcher(Products())
	f.FailList(errors.New("boom"))
	f.FailDetail(errors.New("bang"))

	_, err := f.GetProducts(context.Background())
	assert.EqualError(t, err, "boom")
	_, err = f.GetProductByID(context.Background(), 0)
	assert.EqualError(t, err, "bang")
}

func TestFakeFetcher_HoldBlocksUntilRelease(t *testing.T) {
	f := NewFakeFetcher(Products())
	release := f.Hold()

	done := make(chan int)
	go func() {
		got, _ := f.GetProducts(context.Background())
		done <- len(got)
	}()

	select {
	case c := <-f.Started():
		assert.Equal(t, "GetProducts", c.Method)
	case <-time.After(time.Second):
		t.Fatal("call did not start")
	}

	select {
	case <-done:
		t.Fatal("held call returned early")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case n := <-done:
		assert.Equal(t, 4, n)
	case <-time.After(time.Second):
		t.Fatal("call did not return after release")
	}
}

func TestFakeFetcher_HoldRespectsContext(t *testing.T) {
	f := NewFakeFetcher(Products())
	defer f.Hold()()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.GetProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
