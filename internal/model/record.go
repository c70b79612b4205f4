package model

// SentinelPriority は優先度トークンを持たない項目に割り当てる値です。
// 明示的な優先度 (最大 2 桁) よりも必ず後ろに並びます。
const SentinelPriority = 9999

// Record は 1 行分のマッチ結果を表します。生成後は変更しません。
type Record struct {
	ID       int    `json:"id"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Tag      string `json:"tag"`
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

// HasPriority は明示的な優先度トークンが付いていたかを返します。
func (r Record) HasPriority() bool {
	return r.Priority != SentinelPriority
}

// ClampPriority keeps explicit priorities strictly below the sentinel.
func ClampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p >= SentinelPriority {
		return SentinelPriority - 1
	}
	return p
}
