package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	chatmock "github.com/pitchpartner/pitchpartner/pkg/provider/chat/mock"
	"github.com/pitchpartner/pitchpartner/pkg/provider/stt"
	sttmock "github.com/pitchpartner/pitchpartner/pkg/provider/stt/mock"
)

func TestInstrumentChat_RecordsRequestAndLatency(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	p := InstrumentChat(&chatmock.Provider{Response: &chat.Response{Content: "ok"}}, "openai", m)
	if _, err := p.Complete(ctx, chat.Request{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	rm := collect(t, reader)
	if findMetric(rm, "pitchpartner.chat.duration") == nil {
		t.Error("chat duration histogram not recorded")
	}
	requests := findMetric(rm, "pitchpartner.provider.requests")
	if requests == nil {
		t.Fatal("provider requests counter not recorded")
	}
	sum, ok := requests.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("unexpected requests data: %+v", requests.Data)
	}
	dp := sum.DataPoints[0]
	if v, _ := dp.Attributes.Value(attribute.Key("status")); v.AsString() != "ok" {
		t.Errorf("status attribute = %q, want ok", v.AsString())
	}
	if v, _ := dp.Attributes.Value(attribute.Key("provider")); v.AsString() != "openai" {
		t.Errorf("provider attribute = %q, want openai", v.AsString())
	}
}

func TestInstrumentSTT_RecordsError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	p := InstrumentSTT(&sttmock.Provider{Err: errors.New("backend down")}, "openai", m)
	if _, err := p.Transcribe(ctx, stt.Request{}); err == nil {
		t.Fatal("expected transcription error")
	}

	rm := collect(t, reader)
	errs := findMetric(rm, "pitchpartner.provider.errors")
	if errs == nil {
		t.Fatal("provider errors counter not recorded")
	}
	sum, ok := errs.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected errors data: %+v", errs.Data)
	}
}

func TestInstrument_NilMetricsPassthrough(t *testing.T) {
	inner := &chatmock.Provider{}
	if p := InstrumentChat(inner, "openai", nil); p != chat.Provider(inner) {
		t.Error("nil metrics must return the wrapped provider unchanged")
	}
}
