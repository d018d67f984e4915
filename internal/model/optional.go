package model

import (
	"bytes"
	"encoding/json"
)

// Optional は部分更新リクエストのフィールドを表す。
// キーが存在したかどうか（Set）と、値がnullだったかどうか（Null）を区別する。
// 値の偽性ではなくキーの有無で「更新対象か」を判定するために使用する。
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some は値を持つOptionalを生成する。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Nullable は明示的にnullが指定されたOptionalを生成する。
func Nullable[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON はキーが存在した場合にのみ呼ばれる。
// encoding/jsonはnullの場合もUnmarshalJSONを呼ぶため、Nullで区別する。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}
