// Package execx starts external programs such as the user's editor.
package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// Runner は外部コマンドを実行するための最小インターフェースです。
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// CommandRunner は exec.CommandContext を利用したデフォルト実装です。
// Stdin/Stdout/Stderr を設定すると出力を収集せず端末にそのまま接続します
// (エディタのような対話的なプログラム向け)。
type CommandRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run は指定された作業ディレクトリでコマンドを実行します。接続先が未設定の
// ストリームだけを収集して返します。
func (r CommandRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = r.Stdin
	cmd.Stdout = &stdout
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// IsNotFound はコマンドが見つからない場合のエラーを判定します。
func IsNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// DefaultRunner は出力を収集する CommandRunner を返します。
func DefaultRunner() Runner {
	return CommandRunner{}
}
