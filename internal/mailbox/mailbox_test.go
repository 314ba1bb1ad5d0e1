package mailbox

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestLatestPutWins(t *testing.T) {
	g := NewWithT(t)
	mb := New[int]()

	g.Expect(mb.Put(1)).To(BeFalse())
	g.Expect(mb.Put(2)).To(BeTrue())
	g.Expect(mb.HasJob()).To(BeTrue())

	j, ok := mb.Take(context.Background())
	g.Expect(ok).To(BeTrue())
	g.Expect(j).To(Equal(2))
	g.Expect(mb.HasJob()).To(BeFalse())
	g.Expect(mb.TryTake()).To(BeNil())
}

func TestTakeWaitsForPut(t *testing.T) {
	g := NewWithT(t)
	mb := New[string]()

	got := make(chan string, 1)
	go func() {
		j, _ := mb.Take(context.Background())
		got <- j
	}()

	time.Sleep(10 * time.Millisecond)
	mb.Put("run")
	g.Eventually(got).Should(Receive(Equal("run")))
}

func TestTakeStopsOnCancel(t *testing.T) {
	g := NewWithT(t)
	mb := New[int]()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := mb.Take(ctx)
		done <- ok
	}()

	cancel()
	g.Eventually(done).Should(Receive(BeFalse()))
}

func TestStaleNotifyDoesNotReturnEmptyJob(t *testing.T) {
	g := NewWithT(t)
	mb := New[int]()

	mb.Put(1)
	g.Expect(*mb.TryTake()).To(Equal(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok := mb.Take(ctx)
	g.Expect(ok).To(BeFalse())
}
