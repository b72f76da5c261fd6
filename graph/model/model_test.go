package model

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMockReplaysScript(t *testing.T) {
	m := NewMock(
		Response{Text: "first", Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		Response{Text: "second"},
	)

	res, err := m.Chat(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.Text != "first" || res.Usage.InputTokens != 10 {
		t.Errorf("response = %+v", res)
	}

	res, err = m.Chat(context.Background(), Request{})
	if err != nil || res.Text != "second" {
		t.Errorf("second call = %+v, %v", res, err)
	}

	// The script is exhausted.
	if _, err := m.Chat(context.Background(), Request{}); err == nil {
		t.Error("expected error past the end of the script")
	}

	reqs := m.Requests()
	if len(reqs) != 3 {
		t.Fatalf("recorded %d requests, want 3", len(reqs))
	}
	if reqs[0].Messages[0].Content != "hi" {
		t.Errorf("first request = %+v", reqs[0])
	}
}

func TestMockErr(t *testing.T) {
	boom := errors.New("rate limited")
	m := NewMock(Response{Text: "unused"})
	m.Err = boom

	if _, err := m.Chat(context.Background(), Request{}); !errors.Is(err, boom) {
		t.Errorf("expected scripted error, got %v", err)
	}
}

func TestMockRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMock(Response{Text: "unused"})
	if _, err := m.Chat(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUsageAdd(t *testing.T) {
	total := Usage{}
	for _, u := range []Usage{
		{InputTokens: 100, OutputTokens: 20},
		{InputTokens: 50, OutputTokens: 200},
	} {
		total = total.Add(u)
	}
	if total.InputTokens != 150 || total.OutputTokens != 220 {
		t.Errorf("total = %+v", total)
	}
}

func TestCost(t *testing.T) {
	usage := Usage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost, ok := Cost("gpt-4o-mini", usage)
	if !ok {
		t.Fatal("pricing for gpt-4o-mini missing")
	}
	if want := 0.15 + 0.30; math.Abs(cost-want) > 1e-9 {
		t.Errorf("cost = %v, want %v", cost, want)
	}

	if _, ok := Cost("unknown-model", usage); ok {
		t.Error("unknown model reported as priced")
	}

	SetPricing("custom-model", Pricing{InputPer1M: 1, OutputPer1M: 2})
	cost, ok = Cost("custom-model", Usage{InputTokens: 2_000_000, OutputTokens: 1_000_000})
	if !ok || math.Abs(cost-4.0) > 1e-9 {
		t.Errorf("custom pricing cost = %v, %v", cost, ok)
	}
}
