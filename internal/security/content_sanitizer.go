// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はタスク説明文に含まれるHTMLマークアップを検査する。
// 説明文は受け取ったまま保存し、書き換えは行わない。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 許可されていないタグや属性を含む説明文を検出する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツの検査機能のインターフェースを定義する。
// タスクの作成・更新時に説明文を保存する前に使用される。
type ContentSanitizerService interface {
	// Allows は説明文が許可リストの範囲内であればtrueを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）以外のタグ、
	// on*イベント属性、http/https以外のリンクを含む場合はfalseを返す。
	// マークアップを含まないテキストは記号を含めて常に許可される。
	Allows(text string) bool
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em
//   - aタグ: href属性のみ。http/httpsの絶対URLに限る
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(false)

	return &contentSanitizer{
		policy: p,
	}
}

// Allows はポリシー適用後の内容が元の説明文と一致するかを検査する。
// bluemondayはテキストノードをエスケープして出力するため、比較前に戻す。
func (s *contentSanitizer) Allows(text string) bool {
	return html.UnescapeString(s.sanitize(text)) == text
}

// sanitize は許可リストにないタグと属性を取り除いたHTMLを返す。
func (s *contentSanitizer) sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
