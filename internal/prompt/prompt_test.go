package prompt

import (
	"strings"
	"testing"

	"github.com/easeaico/tsukuyomi/internal/types"
	"github.com/easeaico/tsukuyomi/internal/utils"
)

func TestIntimacyBlock(t *testing.T) {
	got := IntimacyBlock(72)
	want := "\n[親密度：72(親密期)]\n你與使用者已相當親近。回覆時可以多用撒嬌語氣、暱稱與可愛表情，主動關心對方。\n"
	if got != want {
		t.Fatalf("unexpected block:\n%q\nwant\n%q", got, want)
	}
}

func TestMemoryBlock(t *testing.T) {
	if MemoryBlock(nil) != "" {
		t.Fatalf("expected empty block without facts")
	}
	got := MemoryBlock([]string{"他的名字是小明", "他喜歡貓"})
	want := "這是你記住使用者的資訊：\n- 他的名字是小明\n- 他喜歡貓\n請自然地融入對話中，但不要主動說出你記得這些事喔。\n"
	if got != want {
		t.Fatalf("unexpected block:\n%q\nwant\n%q", got, want)
	}
}

func TestSystemPromptOrder(t *testing.T) {
	got := SystemPrompt("PERSONA", 10, []string{"他住在台北"})
	if !strings.HasPrefix(got, "PERSONA\n[親密度：10(冷淡期)]") {
		t.Fatalf("expected persona then intimacy block, got %q", got)
	}
	if !strings.HasSuffix(got, "請自然地融入對話中，但不要主動說出你記得這些事喔。\n") {
		t.Fatalf("expected memory block last, got %q", got)
	}
}

func TestBuilderWindowsHistory(t *testing.T) {
	b := NewBuilder("", 2)
	history := []types.ChatTurn{
		{User: "u1", Bot: "b1"},
		{User: "u2", Bot: "b2"},
		{User: "u3", Bot: "b3"},
	}

	req, err := b.Build(BuildContext{Intimacy: 50, History: history, UserMessage: "u4"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var got []string
	for _, c := range req.Contents {
		got = append(got, c.Role+":"+utils.ExtractContentText(c))
	}
	want := "user:u2 model:b2 user:u3 model:b3 user:u4"
	if strings.Join(got, " ") != want {
		t.Fatalf("unexpected contents: %v", got)
	}

	system := utils.ExtractContentText(req.Config.SystemInstruction)
	if !strings.Contains(system, "月讀醬") || !strings.Contains(system, "[親密度：50(普通期)]") {
		t.Fatalf("unexpected system prompt: %s", system)
	}
}

func TestBuilderZeroHistory(t *testing.T) {
	req, err := NewBuilder("persona", 0).Build(BuildContext{
		History:     []types.ChatTurn{{User: "old", Bot: "reply"}},
		UserMessage: "hi",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(req.Contents) != 1 {
		t.Fatalf("expected only the new message, got %d contents", len(req.Contents))
	}
}

func TestBuilderRejectsBlankMessage(t *testing.T) {
	if _, err := NewBuilder("", 10).Build(BuildContext{UserMessage: "  "}); err == nil {
		t.Fatalf("expected error for blank message")
	}
}
