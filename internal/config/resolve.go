package config

import "strings"

// Resolve は最後に指定された (nil でない) レイヤの値を返す。どのレイヤも
// 未指定なら def。
func Resolve[T any](def T, values ...*T) T {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			return *values[i]
		}
	}
	return def
}

// ResolveStrings is Resolve for lists. An explicitly empty list clears the
// inherited value, which is different from leaving the layer unset.
func ResolveStrings(def []string, values ...*[]string) []string {
	for i := len(values) - 1; i >= 0; i-- {
		if v := values[i]; v != nil {
			if len(*v) == 0 {
				return []string{}
			}
			return cloneStrings(*v)
		}
	}
	return cloneStrings(def)
}

// ResolveAndTrim is Resolve for scalar strings with surrounding blanks removed.
func ResolveAndTrim(def string, values ...*string) string {
	return strings.TrimSpace(Resolve(def, values...))
}
