package serverquery

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	escaper = strings.NewReplacer(
		`\`, `\\`,
		`/`, `\/`,
		" ", `\s`,
		"|", `\p`,
		"\a", `\a`,
		"\b", `\b`,
		"\f", `\f`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
		"\v", `\v`,
	)
	unescaper = strings.NewReplacer(
		`\\`, `\`,
		`\/`, `/`,
		`\s`, " ",
		`\p`, "|",
		`\a`, "\a",
		`\b`, "\b",
		`\f`, "\f",
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\v`, "\v",
	)
)

// Escape 按 ServerQuery 规则转义参数值
func Escape(s string) string { return escaper.Replace(s) }

// Unescape 还原 ServerQuery 转义后的值
func Unescape(s string) string { return unescaper.Replace(s) }

// Record 一条响应记录（key=value 集合），值已反转义
type Record map[string]string

// parseRecords 解析数据行：记录之间用 "|" 分隔，字段之间用空格分隔
func parseRecords(line string) []Record {
	var records []Record
	for _, chunk := range strings.Split(line, "|") {
		rec := make(Record)
		for _, field := range strings.Fields(chunk) {
			key, value, _ := strings.Cut(field, "=")
			rec[key] = Unescape(value)
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// String 返回字段原始字符串值
func (r Record) String(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v, nil
}

// Float 返回字段的浮点值
func (r Record) Float(key string) (float64, error) {
	v, err := r.String(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s is not numeric: %q", ErrProtocol, key, v)
	}
	return f, nil
}

// Int 返回字段的整数值
func (r Record) Int(key string) (int, error) {
	v, err := r.String(key)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s is not an integer: %q", ErrProtocol, key, v)
	}
	return i, nil
}

// parseStatus 解析状态行 "error id=0 msg=ok"，非零状态返回 *Error
func parseStatus(line string) error {
	records := parseRecords(strings.TrimPrefix(line, "error "))
	if len(records) == 0 {
		return fmt.Errorf("%w: malformed status line %q", ErrProtocol, line)
	}
	id, err := records[0].Int("id")
	if err != nil {
		return err
	}
	if id != 0 {
		return &Error{ID: id, Msg: records[0]["msg"]}
	}
	return nil
}
