package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ReportRequest 一次日报请求。只能通过 NewReportRequest 构造，零值不是合法请求。
type ReportRequest struct {
	date string
}

// NewReportRequest 校验日期格式后构造请求。不符合 YYYY-MM-DD 的日期无法推导分区路径，直接拒绝。
func NewReportRequest(date string) (ReportRequest, error) {
	if len(date) != len(time.DateOnly) {
		return ReportRequest{}, fmt.Errorf("invalid report date %q: want YYYY-MM-DD", date)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return ReportRequest{}, fmt.Errorf("invalid report date %q: want YYYY-MM-DD", date)
	}
	return ReportRequest{date: date}, nil
}

// Date 报告日期 YYYY-MM-DD
func (r ReportRequest) Date() string { return r.date }

// Valid 是否由 NewReportRequest 构造
func (r ReportRequest) Valid() bool { return len(r.date) == len(time.DateOnly) }

// Year 分区年份 date[0:4]，零值请求返回空串
func (r ReportRequest) Year() string {
	if !r.Valid() {
		return ""
	}
	return r.date[0:4]
}

// Month 分区月份 date[5:7]，零值请求返回空串
func (r ReportRequest) Month() string {
	if !r.Valid() {
		return ""
	}
	return r.date[5:7]
}

// ReportResult 工具服务返回的日报。decisions/actions/deltas 为已知字段，其余字段原样保留在 Extra 中。
type ReportResult struct {
	Decisions []string       `mapstructure:"decisions"`
	Actions   []string       `mapstructure:"actions"`
	Deltas    []string       `mapstructure:"deltas"`
	Extra     map[string]any `mapstructure:",remain"`

	// Raw 工具服务返回的原始 JSON，落盘时按原字段顺序输出
	Raw json.RawMessage `mapstructure:"-"`

	// Warnings 结构不符预期但不影响落盘的问题，例如列表字段不是数组
	Warnings []string `mapstructure:"-"`
}

// DecodeReportResult 解析工具服务返回的 JSON 对象
func DecodeReportResult(body []byte) (*ReportResult, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode report: expected a JSON object")
	}

	var result ReportResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(listItemsHook),
		Result:     &result,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("decode report fields: %w", err)
	}

	result.Raw = append(json.RawMessage(nil), bytes.TrimSpace(body)...)
	return &result, nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// listItemsHook 把列表字段的每一项转成文本；不是数组的值按缺省处理
func listItemsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != stringSliceType {
		return data, nil
	}
	items, ok := data.([]any)
	if !ok {
		return []string(nil), nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = ItemText(item)
	}
	return out, nil
}

// ItemText 列表项的显示文本：字符串原样，数字和布尔按字面值，null 为空串，对象和数组为紧凑 JSON
func ItemText(item any) string {
	switch v := item.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// IndentedJSON 返回原始报告的缩进形式（两个空格）
func (r *ReportResult) IndentedJSON() ([]byte, error) {
	raw := r.Raw
	if len(raw) == 0 {
		data, err := r.marshalFields()
		if err != nil {
			return nil, err
		}
		raw = data
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent report: %w", err)
	}
	return buf.Bytes(), nil
}

// marshalFields 在没有原始 JSON 时（例如手工构造的结果）重新序列化
func (r *ReportResult) marshalFields() ([]byte, error) {
	fields := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		fields[k] = v
	}
	if r.Decisions != nil {
		fields["decisions"] = r.Decisions
	}
	if r.Actions != nil {
		fields["actions"] = r.Actions
	}
	if r.Deltas != nil {
		fields["deltas"] = r.Deltas
	}
	return json.Marshal(fields)
}

// ReportArtifact 一份已落盘的日报：两个文件及其公开访问路径
type ReportArtifact struct {
	Date            string
	JSONPath        string
	MarkdownPath    string
	JSONLocator     string
	MarkdownLocator string
}
