package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberDeliversLatest(t *testing.T) {
	release := make(chan struct{})
	got := make(chan int, 10)
	sub := NewSubscriber(func(v int) {
		<-release
		got <- v
	})
	defer sub.Stop()

	sub.Push(1)
	// 1 is taken by the callback; 2 and 3 queue behind it and 3 replaces 2
	require.Eventually(t, func() bool { return len(sub.updates) == 0 }, time.Second, time.Millisecond)
	sub.Push(2)
	sub.Push(3)
	close(release)

	assert.Equal(t, 1, <-got)
	assert.Equal(t, 3, <-got)
	assert.Never(t, func() bool { return len(got) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSubscriberStop(t *testing.T) {
	got := make(chan int, 1)
	sub := NewSubscriber(func(v int) { got <- v })
	sub.Stop()
	sub.Stop()

	// let the delivery goroutine observe done before pushing
	time.Sleep(10 * time.Millisecond)
	sub.Push(1)
	assert.Never(t, func() bool { return len(got) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}
