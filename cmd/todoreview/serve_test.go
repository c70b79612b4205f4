package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/todoreview/internal/engine"
	engineopts "github.com/phyten/todoreview/internal/engine/opts"
)

func newTestServer(t *testing.T, roots ...string) (*scanServer, http.Handler) {
	t.Helper()
	a, _, _ := testApp(t, nil)
	def := engineopts.Defaults()
	def.Roots = roots
	require.NoError(t, engineopts.NormalizeAndValidate(&def))
	srv := newScanServer(context.Background(), a, def, nil)
	return srv, srv.routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) engine.Result {
	t.Helper()
	var res engine.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res), "レスポンスのデコードに失敗しました")
	return res
}

func TestAPIScanは既定のルートをスキャンする(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	res := decodeResult(t, rr)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "FIXME", res.Records[0].Tag)
	assert.Equal(t, 1, res.Records[0].ID)
}

func TestAPIScanはクエリで設定を上書きする(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	q := url.Values{}
	q.Set("tag", "NOTE")
	q.Set("exclude", "vendor")
	rr := get(t, h, "/api/scan?"+q.Encode())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeResult(t, rr)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "NOTE", res.Records[0].Tag)
	assert.Equal(t, []string{"NOTE"}, res.Tags)
}

func TestAPIScanはサブディレクトリを対象にできる(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan?root="+url.QueryEscape(filepath.Join(root, "vendor")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeResult(t, rr)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "TODO: vendored", res.Records[0].Text)
}

func TestAPIScanは許可外のルートを拒否する(t *testing.T) {
	root := sampleTree(t)
	other := t.TempDir()
	srv, h := newTestServer(t, root)

	for _, target := range []string{other, filepath.Join(root, ".."), "/"} {
		rr := get(t, h, "/api/scan?root="+url.QueryEscape(target))
		assert.Equal(t, http.StatusForbidden, rr.Code, "root=%s: %s", target, rr.Body.String())
	}

	srv.allowAnyRoot = true
	rr := get(t, h, "/api/scan?root="+url.QueryEscape(other))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestAPIScanはシンボリックリンク経由の脱出を拒否する(t *testing.T) {
	root := sampleTree(t)
	outside := t.TempDir()
	link := filepath.Join(root, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("シンボリックリンクを作成できません: %v", err)
	}
	_, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan?root="+url.QueryEscape(link))
	assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
}

func TestAPIScanはルート外を指すファイルリンクを読まない(t *testing.T) {
	root := sampleTree(t)
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.md")
	writeFile(t, secret, "TODO: leaked secret\n")
	if err := os.Symlink(secret, filepath.Join(root, "leak.md")); err != nil {
		t.Skipf("シンボリックリンクを作成できません: %v", err)
	}
	srv, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeResult(t, rr)
	require.Len(t, res.Records, 3, "ルート外の内容が混入しています: %+v", res.Records)
	for _, rec := range res.Records {
		assert.NotContains(t, rec.Text, "secret")
	}
	assert.Equal(t, 3, res.FilesProcessed, "ガードで除外したファイルは数えない")

	srv.allowAnyRoot = true
	rr = get(t, h, "/api/scan")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res = decodeResult(t, rr)
	require.Len(t, res.Records, 4)
	resolved, err := filepath.EvalSymlinks(secret)
	require.NoError(t, err)
	var files []string
	for _, rec := range res.Records {
		files = append(files, rec.File)
	}
	assert.Contains(t, files, resolved, "リンクは実体のパスで報告する")
}

func TestAPIScanは不正な設定を400で返す(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan?priority_pattern="+url.QueryEscape("("))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body apiError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, engine.KindInvalidConfiguration, body.Kind)
	assert.Equal(t, "priority_pattern", body.Field)

	for _, q := range []string{"output=xml", "case_sensitive=maybe", "max_file_bytes=-1", "preset=everything"} {
		rr := get(t, h, "/api/scan?"+q)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "%s: %s", q, rr.Body.String())
	}
}

func TestAPIScanは出力形式を選べる(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan?output=csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "ID,TAG,PRIORITY,LOCATION,TEXT\r\n")

	rr = get(t, h, "/api/scan?output=md")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestAPIScanは同時リクエストに応答する(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	var wg sync.WaitGroup
	codes := make([]int, 8)
	totals := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			codes[i] = rr.Code
			var res engine.Result
			if err := json.NewDecoder(rr.Body).Decode(&res); err == nil {
				totals[i] = res.Total
			}
		}(i)
	}
	wg.Wait()
	for i := range codes {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.Equal(t, 3, totals[i])
	}
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	rr := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebUIは既定値を埋め込む(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	rr := get(t, h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, root)
	assert.Contains(t, body, `value="FIXME,TODO"`)
	assert.Contains(t, body, "/assets/ui.js")

	assert.Equal(t, http.StatusOK, get(t, h, "/assets/ui.js").Code)
}

func TestAPIScanはlangで絞り込む(t *testing.T) {
	root := sampleTree(t)
	_, h := newTestServer(t, root)

	rr := get(t, h, "/api/scan?tag=TODO,NOTE&lang=markdown")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeResult(t, rr)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "NOTE", res.Records[0].Tag)

	bad := get(t, h, "/api/scan?lang=klingon")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Contains(t, bad.Body.String(), `"field":"languages"`)
}
