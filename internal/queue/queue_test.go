package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// mockSender records deliveries and can fail selectively.
type mockSender struct {
	mu        sync.Mutex
	sent      []models.OutboundJob
	sentAt    []time.Time
	failPhone string
}

func (m *mockSender) Send(ctx context.Context, phone, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if phone == m.failPhone {
		return errors.New("provider rejected message")
	}
	m.sent = append(m.sent, models.OutboundJob{Phone: phone, Body: body})
	m.sentAt = append(m.sentAt, time.Now())
	return nil
}

func (m *mockSender) times() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.sentAt))
	copy(out, m.sentAt)
	return out
}

func (m *mockSender) jobs() []models.OutboundJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.OutboundJob, len(m.sent))
	copy(out, m.sent)
	return out
}

func TestEnqueueDeliversInFIFOOrder(t *testing.T) {
	sender := &mockSender{}
	q := NewDeliveryQueue(sender, WithSendDelay(0))

	const n = 25
	for i := 0; i < n; i++ {
		if err := q.Enqueue("11999998888", strconv.Itoa(i)); err != nil {
			t.Fatalf("Enqueue(%d) failed: %v", i, err)
		}
	}

	q.Start(context.Background())
	q.Stop()

	jobs := sender.jobs()
	if len(jobs) != n {
		t.Fatalf("delivered %d jobs, want %d", len(jobs), n)
	}
	for i, job := range jobs {
		if job.Body != strconv.Itoa(i) {
			t.Fatalf("job %d delivered out of order: got body %q", i, job.Body)
		}
	}
}

func TestDeliveriesAreSpacedBySendDelay(t *testing.T) {
	const delay = 20 * time.Millisecond
	sender := &mockSender{}
	q := NewDeliveryQueue(sender, WithSendDelay(delay))

	const n = 3
	for i := 0; i < n; i++ {
		if err := q.Enqueue("11999998888", strconv.Itoa(i)); err != nil {
			t.Fatalf("Enqueue(%d) failed: %v", i, err)
		}
	}

	q.Start(context.Background())
	q.Stop()

	times := sender.times()
	if len(times) != n {
		t.Fatalf("delivered %d jobs, want %d", len(times), n)
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < delay {
			t.Errorf("delivery %d followed the previous one after %v, want at least %v", i, gap, delay)
		}
	}
}

func TestConcurrentEnqueueLosesNothing(t *testing.T) {
	sender := &mockSender{}
	q := NewDeliveryQueue(sender, WithSendDelay(0))
	q.Start(context.Background())

	const workers, perWorker = 8, 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := q.Enqueue("11999998888", fmt.Sprintf("w%d-%d", w, i)); err != nil {
					t.Errorf("Enqueue failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()
	q.Stop()

	jobs := sender.jobs()
	if len(jobs) != workers*perWorker {
		t.Fatalf("delivered %d jobs, want %d", len(jobs), workers*perWorker)
	}
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if seen[job.Body] {
			t.Fatalf("job %q delivered twice", job.Body)
		}
		seen[job.Body] = true
	}
}

func TestDeliveryFailureDoesNotHaltDrain(t *testing.T) {
	sender := &mockSender{failPhone: "11000000000"}
	q := NewDeliveryQueue(sender, WithSendDelay(0))

	q.Enqueue("11999998888", "first")
	q.Enqueue("11000000000", "doomed")
	q.Enqueue("11999998888", "second")

	q.Start(context.Background())
	q.Stop()

	jobs := sender.jobs()
	if len(jobs) != 2 {
		t.Fatalf("delivered %d jobs, want 2", len(jobs))
	}
	if jobs[0].Body != "first" || jobs[1].Body != "second" {
		t.Fatalf("unexpected delivery order: %+v", jobs)
	}
}

func TestEnqueueFullBufferDropsJob(t *testing.T) {
	q := NewDeliveryQueue(&mockSender{}, WithBufferSize(1), WithSendDelay(0))

	if err := q.Enqueue("11999998888", "fits"); err != nil {
		t.Fatalf("first Enqueue failed: %v", err)
	}
	if err := q.Enqueue("11999998888", "overflow"); !errors.Is(err, models.ErrQueueFull) {
		t.Fatalf("second Enqueue = %v, want ErrQueueFull", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
}

func TestEnqueueAfterStopIsRejected(t *testing.T) {
	q := NewDeliveryQueue(&mockSender{}, WithSendDelay(0))
	q.Start(context.Background())
	q.Stop()

	if err := q.Enqueue("11999998888", "late"); !errors.Is(err, models.ErrQueueStopped) {
		t.Fatalf("Enqueue after Stop = %v, want ErrQueueStopped", err)
	}
}

func TestStopWithoutStartDoesNotBlock(t *testing.T) {
	q := NewDeliveryQueue(&mockSender{})

	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a queue that was never started")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	sender := &mockSender{}
	q := NewDeliveryQueue(sender, WithSendDelay(0))

	ctx := context.Background()
	q.Start(ctx)
	q.Start(ctx)
	q.Start(ctx)

	q.Enqueue("11999998888", "only once")
	q.Stop()

	if jobs := sender.jobs(); len(jobs) != 1 {
		t.Fatalf("delivered %d jobs, want 1 (double worker?)", len(jobs))
	}
}
