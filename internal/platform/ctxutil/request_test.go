package ctxutil

import (
	"context"
	"testing"
)

func TestActorDefaults(t *testing.T) {
	if got := Actor(context.Background()); got != DefaultActor {
		t.Fatalf("no request data: want=%q got=%q", DefaultActor, got)
	}
	ctx := WithRequestData(context.Background(), &RequestData{Actor: "  "})
	if got := Actor(ctx); got != DefaultActor {
		t.Fatalf("blank actor: want=%q got=%q", DefaultActor, got)
	}
	ctx = WithRequestData(context.Background(), &RequestData{Actor: "ana@example.com", IP: "10.0.0.2"})
	if got := Actor(ctx); got != "ana@example.com" {
		t.Fatalf("actor: want=%q got=%q", "ana@example.com", got)
	}
	if rd := GetRequestData(ctx); rd == nil || rd.IP != "10.0.0.2" {
		t.Fatalf("request data ip: got=%+v", rd)
	}
}

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t1" || td.RequestID != "r1" {
		t.Fatalf("trace data: got=%+v", td)
	}
	if GetTraceData(context.Background()) != nil {
		t.Fatalf("expected nil trace data on bare context")
	}
}
