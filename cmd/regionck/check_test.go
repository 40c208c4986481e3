package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"regionck/internal/driver"
	"regionck/internal/trace"
)

func TestDumpRingWritesBufferedEvents(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	ring.Emit(&trace.Event{Time: time.Now(), Kind: trace.KindPoint, Scope: trace.ScopePass, Name: "solve"})

	var buf bytes.Buffer
	dumpRing(ring, &buf)
	if !strings.Contains(buf.String(), "solve") {
		t.Errorf("ring dump missing buffered event: %q", buf.String())
	}
}

func TestDumpRingIgnoresOtherTracers(t *testing.T) {
	var buf bytes.Buffer
	dumpRing(trace.Nop, &buf)
	dumpRing(trace.NewStreamTracer(&bytes.Buffer{}, trace.LevelDebug, trace.FormatText), &buf)
	if buf.Len() != 0 {
		t.Errorf("unexpected dump output: %q", buf.String())
	}
}

func TestSetupTracer(t *testing.T) {
	tr, err := setupTracer(driver.TraceConfig{Level: "off"})
	if err != nil || tr.Enabled() {
		t.Errorf("off level: tracer=%T enabled=%v err=%v", tr, tr.Enabled(), err)
	}

	tr, err = setupTracer(driver.TraceConfig{Level: "debug", Mode: "ring"})
	if err != nil {
		t.Fatalf("setupTracer: %v", err)
	}
	if _, ok := tr.(*trace.RingTracer); !ok {
		t.Errorf("ring mode produced %T", tr)
	}

	if _, err := setupTracer(driver.TraceConfig{Level: "loud"}); err == nil {
		t.Error("bad level must fail")
	}
	if _, err := setupTracer(driver.TraceConfig{Level: "debug", Mode: "disk"}); err == nil {
		t.Error("bad mode must fail")
	}
}
