package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout は期日の文字列表現（YYYY-MM-DD）。
const DateLayout = "2006-01-02"

// Date は時刻を持たない日付を表す。内部ではUTCの0時として保持する。
type Date struct {
	time.Time
}

// NewDate は年月日からDateを生成する。
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf は時刻の日付部分を取り出す。
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate は "YYYY-MM-DD" またはRFC3339形式の文字列を日付として解釈する。
// RFC3339の場合は時刻部分を切り捨てる。
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("invalid date: %q", s)
}

// String は "YYYY-MM-DD" 形式の文字列を返す。
func (d Date) String() string {
	return d.Format(DateLayout)
}
