// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func start() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestFakeNowAdvance(t *testing.T) {
	c := Fake(start())
	if !c.Now().Equal(start()) {
		t.Fatalf("initial time: got %v", c.Now())
	}
	c.Advance(90 * time.Second)
	if want := start().Add(90 * time.Second); !c.Now().Equal(want) {
		t.Fatalf("after advance: got %v, want %v", c.Now(), want)
	}
}

func TestFakeAfterFiresAtDeadline(t *testing.T) {
	c := Fake(start())
	ch := c.After(10 * time.Second)

	c.Advance(9 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	c.Advance(1 * time.Second)
	select {
	case at := <-ch:
		if !at.Equal(start().Add(10 * time.Second)) {
			t.Fatalf("fire time: got %v", at)
		}
	default:
		t.Fatal("did not fire at deadline")
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	c := Fake(start())
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}

func TestFakeTickerRepeats(t *testing.T) {
	c := Fake(start())
	ticker := c.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		c.Advance(5 * time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("tick %d missing", i)
		}
	}
}

func TestFakeTickerStopped(t *testing.T) {
	c := Fake(start())
	ticker := c.NewTicker(5 * time.Second)
	ticker.Stop()

	c.Advance(10 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
	if c.PendingCount() != 0 {
		t.Fatalf("expected 0 pending, got %d", c.PendingCount())
	}
}

func TestFakeSleepBlocksUntilAdvance(t *testing.T) {
	c := Fake(start())
	done := make(chan struct{})
	go func() {
		c.Sleep(3 * time.Second)
		close(done)
	}()

	c.WaitForTimers(1)
	select {
	case <-done:
		t.Fatal("Sleep returned before advance")
	default:
	}

	c.Advance(3 * time.Second)
	<-done
}

func TestFakeWaitForTimers(t *testing.T) {
	c := Fake(start())
	go c.After(time.Second)
	go c.After(time.Second)
	c.WaitForTimers(2)
	if c.PendingCount() != 2 {
		t.Fatalf("expected 2 pending, got %d", c.PendingCount())
	}
}
