package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"google.golang.org/adk/model"

	"github.com/easeaico/tsukuyomi/internal/models"
	"github.com/easeaico/tsukuyomi/internal/utils"
)

const judgeTemplateText = `你是「對話親密度影響」的裁判。請綜合使用者訊息與機器人回覆，評估這次互動對親密度的變化。
回傳 JSON，整數介於 -2 到 +2。

規則（越高越親密）：
- 明確讚美、撒嬌、示好、感謝、分享私事或脆弱 → +1 ~ +2
- 普通閒聊或資訊型問題 → 0
- 明確拒絕、批評、貶低、嘲諷 → -1 ~ -2
- 若雙方語氣一致偏甜/親暱，可適度提高；若機器人語氣冷淡、拒絕，則降低。
- 不要因為單一正向詞就極端加分；請考慮上下文完整語意。

輸入：
使用者：「{{.UserMessage}}」
機器人回覆：「{{.BotReply}}」
目前親密度：{{.Current}}

只回傳 JSON 結構如下:
{
  "intimacy_change": -2
}
`

var judgeTemplate = template.Must(template.New("judge").Parse(judgeTemplateText))

type judgeInput struct {
	UserMessage string
	BotReply    string
	Current     int
}

// Judge asks a generative model how a turn should move intimacy.
type Judge struct {
	model model.LLM
}

// NewJudge returns a Judge backed by m.
func NewJudge(m model.LLM) *Judge {
	return &Judge{model: m}
}

// Evaluate returns a delta in [MinChange, MaxChange]. A reply without the
// intimacy_change field yields 0 with a nil error; transport and parse
// failures are returned so the caller can fall back.
func (j *Judge) Evaluate(ctx context.Context, userMessage, botReply string, current int) (int, error) {
	var buf bytes.Buffer
	if err := judgeTemplate.Execute(&buf, judgeInput{
		UserMessage: userMessage,
		BotReply:    botReply,
		Current:     current,
	}); err != nil {
		return 0, fmt.Errorf("failed to render judge prompt: %w", err)
	}

	raw, err := models.Prompt(ctx, j.model, buf.String())
	if err != nil {
		return 0, fmt.Errorf("failed to query intimacy judge: %w", err)
	}

	var verdict struct {
		Change json.RawMessage `json:"intimacy_change"`
	}
	if err := utils.DecodeJSONObject(raw, &verdict); err != nil {
		return 0, fmt.Errorf("failed to parse judge verdict: %w", err)
	}
	if len(verdict.Change) == 0 {
		return 0, nil
	}

	change, err := parseChange(verdict.Change)
	if err != nil {
		return 0, err
	}
	return ClampChange(change), nil
}

// parseChange accepts a JSON number (truncated toward zero) or a numeric string.
func parseChange(raw json.RawMessage) (int, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			return 0, fmt.Errorf("invalid intimacy_change: %s", raw)
		}
		// saturate before converting so huge values stay in int range
		num = math.Max(math.Min(math.Trunc(num), MaxChange), MinChange)
		return int(num), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return 0, fmt.Errorf("invalid intimacy_change %q: %w", text, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("invalid intimacy_change: %s", raw)
}
