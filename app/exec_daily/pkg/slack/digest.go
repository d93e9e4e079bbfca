package slack

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

// EmptyPlaceholder 空列表的显示内容
const EmptyPlaceholder = "_None_"

// Payload webhook 请求体
type Payload struct {
	Blocks []Block `json:"blocks"`
}

// Block Slack Block Kit 中的一个块
type Block struct {
	Type     string    `json:"type"`
	Text     *Text     `json:"text,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Text 文本对象
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Element actions 块里的按钮
type Element struct {
	Type string `json:"type"`
	Text *Text  `json:"text"`
	URL  string `json:"url"`
}

// Digest 日报摘要的输入
type Digest struct {
	Date        string
	JSONURL     string
	MarkdownURL string
	Decisions   []string
	Actions     []string
	Deltas      []string
}

// NewDigest 由已落盘的日报构造摘要。baseURL 非空时按钮链接使用绝对地址。
func NewDigest(art *model.ReportArtifact, result *model.ReportResult, baseURL string) Digest {
	return Digest{
		Date:        art.Date,
		JSONURL:     absoluteURL(baseURL, art.JSONLocator),
		MarkdownURL: absoluteURL(baseURL, art.MarkdownLocator),
		Decisions:   result.Decisions,
		Actions:     result.Actions,
		Deltas:      result.Deltas,
	}
}

// FormatList 生成从 1 开始编号的列表，空列表返回占位符
func FormatList(items []string) string {
	if len(items) == 0 {
		return EmptyPlaceholder
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// Build 组装 header、三个分节和按钮行
func (d Digest) Build() Payload {
	return Payload{Blocks: []Block{
		{Type: "header", Text: &Text{Type: "plain_text", Text: "Executive Daily — " + d.Date}},
		section("Decisions", d.Decisions),
		section("Actions (next 48h)", d.Actions),
		section("Deltas", d.Deltas),
		{Type: "actions", Elements: []Element{
			button("Open JSON", d.JSONURL),
			button("Open Markdown", d.MarkdownURL),
		}},
	}}
}

func section(title string, items []string) Block {
	return Block{
		Type: "section",
		Text: &Text{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", title, FormatList(items))},
	}
}

func button(label, url string) Element {
	return Element{Type: "button", Text: &Text{Type: "plain_text", Text: label}, URL: url}
}

func absoluteURL(baseURL, locator string) string {
	if baseURL == "" {
		return locator
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(locator, "/")
}
