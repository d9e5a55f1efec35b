package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/model"
)

func addEvent(name string) event {
	return event{action: AddToCart{Product: model.ProductSummary{Name: name, Price: 1}}}
}

func eventName(t *testing.T, ev event) string {
	t.Helper()
	a, ok := ev.action.(AddToCart)
	require.True(t, ok, "unexpected action %T", ev.action)
	return a.Product.Name
}

func TestActionQueue_FIFO(t *testing.T) {
	q := newActionQueue()
	for _, name := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(addEvent(name)))
	}

	for _, want := range []string{"A", "B", "C"} {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, eventName(t, ev))
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "queue should be empty")
}

func TestActionQueue_WaitSignalsOnEnqueue(t *testing.T) {
	q := newActionQueue()

	done := make(chan event)
	go func() {
		<-q.Wait()
		ev, ok := q.TryDequeue()
		if ok {
			done <- ev
		}
	}()

	q.Enqueue(event{action: RequestCatalog{Key: catalog.ListKey}})

	select {
	case ev := <-done:
		assert.Equal(t, RequestCatalog{Key: catalog.ListKey}, ev.action)
	case <-time.After(time.Second):
		t.Fatal("waiter was not signalled")
	}
}

func TestActionQueue_CloseWakesWaiterAndRejects(t *testing.T) {
	q := newActionQueue()

	woke := make(chan struct{})
	go func() {
		<-q.Wait()
		close(woke)
	}()

	q.Close()
	q.Close() // idempotent

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("close did not wake the waiter")
	}
	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(addEvent("late")), "enqueue after close must fail")
}

func TestActionQueue_DrainReturnsPending(t *testing.T) {
	q := newActionQueue()
	q.Enqueue(addEvent("A"))
	q.Enqueue(addEvent("B"))

	pending := q.Drain()
	require.Len(t, pending, 2)
	assert.Equal(t, "A", eventName(t, pending[0]))
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.Closed())
	assert.Empty(t, q.Drain(), "second drain finds nothing")
}

func TestActionQueue_ConcurrentProducers(t *testing.T) {
	q := newActionQueue()
	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(addEvent("x"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
	n := 0
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
		n++
	}
	assert.Equal(t, producers*perProducer, n)
}
