package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/easeaico/tsukuyomi/internal/models/modeltest"
)

func TestModelExtractor(t *testing.T) {
	llm := &modeltest.FakeLLM{Reply: "```json\n{\"summary\":\"自我介紹\",\"facts\":[\"他的名字是小明\", 3, \"  \", \"他喜歡咖啡\"]}\n```"}

	facts, err := NewModelExtractor(llm).Extract(context.Background(), "我叫小明，我喜歡咖啡")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fmt.Sprint(facts) != fmt.Sprint([]string{"他的名字是小明", "他喜歡咖啡"}) {
		t.Fatalf("unexpected facts: %#v", facts)
	}

	reqs := llm.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	cfg := reqs[0].Config
	if cfg == nil || cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema == nil {
		t.Fatalf("expected structured response config, got %+v", cfg)
	}
}

func TestModelExtractorNoFacts(t *testing.T) {
	llm := &modeltest.FakeLLM{Reply: `{"summary":"閒聊"}`}
	facts, err := NewModelExtractor(llm).Extract(context.Background(), "今天天氣如何")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(facts) != 0 {
		t.Fatalf("expected no facts, got %#v", facts)
	}
}

func TestModelExtractorErrors(t *testing.T) {
	for name, llm := range map[string]*modeltest.FakeLLM{
		"backend":   {Err: errors.New("503")},
		"malformed": {Reply: "抱歉我無法回答"},
	} {
		if _, err := NewModelExtractor(llm).Extract(context.Background(), "hi"); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestExtractPatternFacts(t *testing.T) {
	cases := []struct {
		message string
		want    []string
	}{
		{"我叫小明", []string{"他的名字是小明"}},
		{"我的名字是阿華", []string{"他的名字是阿華"}},
		{"我喜歡貓，我討厭下雨", []string{"他喜歡貓", "他討厭下雨"}},
		{"我今年25歲", []string{"他25歲"}},
		{"我 18 歲了", []string{"他18歲"}},
		{"我住在台北。", []string{"他住在台北"}},
		{"我是工程師也是老師", []string{"他是老師", "他是工程師"}},
		{"工程師很辛苦", nil},
		{"我覺得很好", []string{"他覺得很好"}},
		{"我今天好累又難過", []string{"他今天難過", "他今天累"}},
		{"今天天氣如何", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := ExtractPatternFacts(tc.message)
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Fatalf("ExtractPatternFacts(%q) = %#v, want %#v", tc.message, got, tc.want)
		}
	}
}

func TestPatternExtractorNeverFails(t *testing.T) {
	facts, err := PatternExtractor{}.Extract(context.Background(), "我叫Ann")
	if err != nil || len(facts) != 1 || facts[0] != "他的名字是Ann" {
		t.Fatalf("unexpected result: %#v, %v", facts, err)
	}
}

func TestLockTableSerializes(t *testing.T) {
	table := newLockTable()
	unlock := table.lock("u1")

	acquired := make(chan struct{})
	go func() {
		release := table.lock("u1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatalf("expected second lock to wait")
	default:
	}

	other := table.lock("u2")
	other()

	unlock()
	<-acquired
}
