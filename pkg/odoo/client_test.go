package odoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestServer 模拟 Odoo JSON-RPC 端点
// handler 返回 (result, rpcError)，按请求的 service/method 分派
func newTestServer(t *testing.T, handler func(req RPCRequest) (interface{}, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jsonrpc" {
			http.NotFound(w, r)
			return
		}

		var req RPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, rpcErr := handler(req)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(url string) Config {
	return Config{
		BaseURL:   url,
		DB:        "testdb",
		Username:  "admin",
		Password:  "secret",
		Timeout:   5 * time.Second,
		PageDelay: time.Millisecond,
	}
}

func TestLoginSuccess(t *testing.T) {
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		if req.Params.Service != "common" || req.Params.Method != "login" {
			t.Errorf("意外的调用: %s.%s", req.Params.Service, req.Params.Method)
		}
		return 7, nil
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	uid, err := client.Login(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if uid != 7 {
		t.Errorf("uid = %d, want 7", uid)
	}
}

func TestLoginFailure(t *testing.T) {
	// 凭证错误时 Odoo 返回 false 而非错误对象
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		return false, nil
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	if _, err := client.Login(context.Background()); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("err = %v, want ErrAuthFailed", err)
	}
}

func TestFetchAllPaginationTermination(t *testing.T) {
	type rec struct {
		ID int64 `json:"id"`
	}

	// 第一页满页，第二页不满即终止
	pages := [][]rec{
		{{1}, {2}, {3}},
		{{4}},
	}
	var pageIdx atomic.Int32

	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		if req.Params.Method == "login" {
			return 1, nil
		}
		i := int(pageIdx.Add(1)) - 1
		if i >= len(pages) {
			t.Errorf("不应请求第 %d 页", i+1)
			return []rec{}, nil
		}
		return pages[i], nil
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	records, err := FetchAll[rec](context.Background(), client, "product.template", nil, []string{"id"}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Errorf("共 %d 条, want 4", len(records))
	}
	if got := pageIdx.Load(); got != 2 {
		t.Errorf("请求了 %d 页, want 2", got)
	}
}

func TestFetchAllEmptyFirstPage(t *testing.T) {
	type rec struct {
		ID int64 `json:"id"`
	}
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		if req.Params.Method == "login" {
			return 1, nil
		}
		return []rec{}, nil
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	records, err := FetchAll[rec](context.Background(), client, "product.brand", nil, []string{"id"}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("空页应终止且返回空集, got %d", len(records))
	}
}

func TestExecuteKwRPCError(t *testing.T) {
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		if req.Params.Method == "login" {
			return 1, nil
		}
		return nil, &RPCError{Code: 200, Message: "Odoo Server Error",
			Data: &RPCErrorData{Name: "ValueError", Message: "bad domain"}}
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.ExecuteKw(context.Background(), "product.template", "search_read", nil, nil)
	if err == nil {
		t.Fatal("期望 RPC 错误")
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("err 类型错误: %T", err)
	}
	if rpcErr.Data.Message != "bad domain" {
		t.Errorf("错误明细丢失: %v", rpcErr)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1, "result": 9,
		})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryCount = 2
	client := NewClient(cfg)

	uid, err := client.Login(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if uid != 9 {
		t.Errorf("uid = %d", uid)
	}
	if calls.Load() < 2 {
		t.Errorf("5xx 应触发重试, 实际请求 %d 次", calls.Load())
	}
}
