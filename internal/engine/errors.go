package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind はエラーの分類コード。CLI の終了コードや JSON 出力で使う。
type Kind string

const (
	KindInvalidConfiguration Kind = "INVALID_CONFIGURATION"
	KindNotFound             Kind = "NOT_FOUND"
	KindReadFailed           Kind = "READ_FAILED"
)

var (
	// ErrNotText marks files that are not valid UTF-8 text.
	ErrNotText = errors.New("binary or non UTF-8 content")
	// ErrTooLarge marks files above the configured size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// ConfigurationError は設定が不正なときに Start から同期的に返される。
// この場合スキャンは開始されず、完了コールバックも呼ばれない。
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Kind reports KindInvalidConfiguration.
func (e *ConfigurationError) Kind() Kind { return KindInvalidConfiguration }

// PathNotFoundWarning は存在しないルートを表す。ログに残してスキップする。
type PathNotFoundWarning struct {
	Root string
	Err  error
}

func (w *PathNotFoundWarning) Error() string {
	return fmt.Sprintf("root '%s' does not exist", w.Root)
}

func (w *PathNotFoundWarning) Unwrap() error { return w.Err }

// Kind reports KindNotFound.
func (w *PathNotFoundWarning) Kind() Kind { return KindNotFound }

// FileReadError は 1 ファイルの読み込み失敗。スキャンは続行される。
type FileReadError struct {
	Path    string `json:"file"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func newFileReadError(path, stage string, err error) *FileReadError {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = "unknown error"
	}
	return &FileReadError{Path: path, Stage: stage, Message: msg, Err: err}
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Stage, e.Path, e.Message)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Kind reports KindReadFailed.
func (e *FileReadError) Kind() Kind { return KindReadFailed }

// KindOf returns the classification of err, or "" when err carries none.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}
