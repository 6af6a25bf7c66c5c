package queue

import (
	"testing"
	"time"
)

func TestReceiveReturnsInFIFOOrder(t *testing.T) {
	q := New[int](10)

	for i := 1; i <= 3; i++ {
		if !q.TrySend(i) {
			t.Fatalf("TrySend(%d) failed on non-full queue", i)
		}
	}

	for i := 1; i <= 3; i++ {
		v, ok := q.Receive(10 * time.Millisecond)
		if !ok {
			t.Fatalf("Receive returned empty, expected %d", i)
		}
		if v != i {
			t.Errorf("Expected %d, got %d", i, v)
		}
	}
}

func TestReceiveEmptyTimesOut(t *testing.T) {
	q := New[string](5)

	timeout := 50 * time.Millisecond
	start := time.Now()
	_, ok := q.Receive(timeout)
	elapsed := time.Since(start)

	if ok {
		t.Errorf("Expected empty result from empty queue")
	}
	if elapsed < timeout {
		t.Errorf("Receive returned after %v, before the %v timeout", elapsed, timeout)
	}
	if elapsed > timeout+100*time.Millisecond {
		t.Errorf("Receive blocked %v, well past the %v timeout", elapsed, timeout)
	}
}

func TestTrySendDropsWhenFull(t *testing.T) {
	q := New[int](2)

	if !q.TrySend(1) || !q.TrySend(2) {
		t.Fatalf("TrySend failed before capacity was reached")
	}
	if q.TrySend(3) {
		t.Errorf("Expected TrySend to report drop on full queue")
	}
	if q.Len() != 2 {
		t.Errorf("Expected 2 buffered messages, got %d", q.Len())
	}
}

func TestSendTimesOutWhenFull(t *testing.T) {
	q := New[int](1)

	if err := q.Send(1, 10*time.Millisecond); err != nil {
		t.Fatalf("Send on empty queue failed: %v", err)
	}
	if err := q.Send(2, 20*time.Millisecond); err != ErrFull {
		t.Errorf("Expected ErrFull, got %v", err)
	}
}

func TestSendUnblocksWhenConsumerDrains(t *testing.T) {
	q := New[int](1)

	if err := q.Send(1, 10*time.Millisecond); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Receive(10 * time.Millisecond)
	}()

	if err := q.Send(2, 500*time.Millisecond); err != nil {
		t.Errorf("Expected Send to succeed once drained, got %v", err)
	}
}

func TestCloseFailsSendsAndDrainsPending(t *testing.T) {
	q := New[int](5)
	q.TrySend(42)
	q.Close()

	if err := q.Send(1, 10*time.Millisecond); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if q.TrySend(2) {
		t.Errorf("Expected TrySend to fail on closed queue")
	}

	v, ok := q.Receive(10 * time.Millisecond)
	if !ok || v != 42 {
		t.Errorf("Expected to drain pending message 42, got %v (ok=%v)", v, ok)
	}

	if _, ok := q.Receive(10 * time.Millisecond); ok {
		t.Errorf("Expected empty result after drain")
	}
	if !q.Closed() {
		t.Errorf("Expected Closed() to report true")
	}
}
