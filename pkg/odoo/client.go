package odoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 客户端 ====================

// ErrAuthFailed 认证失败（用户名/密码错误或账号被禁用），对整轮导出是致命错误
var ErrAuthFailed = errors.New("odoo: authentication failed")

// Config 客户端配置
type Config struct {
	BaseURL  string
	DB       string
	Username string
	Password string

	// ProxyURL 可选的前置代理（对应线上的 proxy.php 中转）
	ProxyURL string

	// Timeout 单次请求超时，默认 30s
	Timeout time.Duration
	// RetryCount 瞬时故障重试次数，默认 3
	RetryCount int
	// PageDelay 翻页间隔，给上游留喘息时间，默认 100ms
	PageDelay time.Duration
}

// Client Odoo JSON-RPC 客户端
// 登录一次换取 uid，后续所有 execute_kw 调用复用
type Client struct {
	http     *resty.Client
	db       string
	username string
	password string

	mu  sync.Mutex
	uid int64

	pageDelay time.Duration
	reqID     atomic.Int64
}

// NewClient 创建客户端
// 重试策略：网络错误 / 429 / 5xx 退避重试，4xx 不重试
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = 3
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = 100 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "AlSaji-Export/1.0").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	if cfg.ProxyURL != "" {
		httpClient.SetProxy(cfg.ProxyURL)
	}

	return &Client{
		http:      httpClient,
		db:        cfg.DB,
		username:  cfg.Username,
		password:  cfg.Password,
		pageDelay: cfg.PageDelay,
	}
}

// Login 调用 common.login 换取 uid
func (c *Client) Login(ctx context.Context) (int64, error) {
	result, err := c.call(ctx, "common", "login", []interface{}{c.db, c.username, c.password})
	if err != nil {
		return 0, err
	}

	// 登录失败时 Odoo 返回 false，解析失败同样视为认证失败
	var uid int64
	if err := json.Unmarshal(result, &uid); err != nil || uid <= 0 {
		return 0, ErrAuthFailed
	}

	c.mu.Lock()
	c.uid = uid
	c.mu.Unlock()
	return uid, nil
}

// ensureLogin 惰性登录，uid 已缓存则直接复用
func (c *Client) ensureLogin(ctx context.Context) (int64, error) {
	c.mu.Lock()
	uid := c.uid
	c.mu.Unlock()
	if uid > 0 {
		return uid, nil
	}
	return c.Login(ctx)
}

// ExecuteKw 调用 object.execute_kw
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error) {
	uid, err := c.ensureLogin(ctx)
	if err != nil {
		return nil, err
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	return c.call(ctx, "object", "execute_kw",
		[]interface{}{c.db, uid, c.password, model, method, args, kwargs})
}

// SearchRead search_read 一页数据
// domain 为空时传 []，Odoo 视为无过滤条件
func (c *Client) SearchRead(ctx context.Context, model string, domain []interface{}, fields []string, offset, limit int) (json.RawMessage, error) {
	if domain == nil {
		domain = []interface{}{}
	}
	kwargs := map[string]interface{}{
		"fields": fields,
		"offset": offset,
		"limit":  limit,
	}
	return c.ExecuteKw(ctx, model, "search_read", []interface{}{domain}, kwargs)
}

// call 发送一次 JSON-RPC 请求
// 注意：空结果（false/null/[]）是合法返回，调用失败才返回 error，
// 两者不可混淆——空页结束分页，失败由上层决定降级或中止
func (c *Client) call(ctx context.Context, service, method string, args []interface{}) (json.RawMessage, error) {
	reqBody := NewRPCRequest(c.reqID.Add(1), service, method, args)

	var rpcResp RPCResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&rpcResp).
		Post("/jsonrpc")

	if err != nil {
		return nil, fmt.Errorf("odoo %s.%s 请求失败: %w", service, method, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("odoo %s.%s 响应异常: HTTP %d", service, method, resp.StatusCode())
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

// ==================== 分页拉取 ====================

// FetchAll 按 offset 翻页拉取 model 的全部记录
// 终止规则：某页返回数量小于 pageSize（含空页）即停止，
// 该规则对所有资源统一适用
func FetchAll[T any](ctx context.Context, c *Client, model string, domain []interface{}, fields []string, pageSize int) ([]T, error) {
	var all []T
	offset := 0

	for {
		raw, err := c.SearchRead(ctx, model, domain, fields, offset, pageSize)
		if err != nil {
			return nil, err
		}

		page, err := DecodeRecords[T](raw)
		if err != nil {
			return nil, fmt.Errorf("解析 %s 第 %d 条起的分页失败: %w", model, offset, err)
		}

		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
		offset += len(page)

		// 翻页间隔：对上游的主动限流，非正确性要求
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	if len(all) > 0 {
		log.Printf("[Odoo] %s 拉取完成: %d 条", model, len(all))
	}
	return all, nil
}

// FetchPages 与 FetchAll 相同的翻页规则，但每页交给回调处理
// 回调返回错误即中止整轮拉取
func FetchPages[T any](ctx context.Context, c *Client, model string, domain []interface{}, fields []string, pageSize int, onPage func(page []T) error) error {
	offset := 0
	total := 0

	for {
		raw, err := c.SearchRead(ctx, model, domain, fields, offset, pageSize)
		if err != nil {
			return err
		}

		page, err := DecodeRecords[T](raw)
		if err != nil {
			return fmt.Errorf("解析 %s 第 %d 条起的分页失败: %w", model, offset, err)
		}

		if len(page) > 0 {
			if err := onPage(page); err != nil {
				return err
			}
			total += len(page)
		}

		if len(page) < pageSize {
			break
		}
		offset += len(page)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	if total > 0 {
		log.Printf("[Odoo] %s 拉取完成: %d 条", model, total)
	}
	return nil
}

// DecodeRecords 把 search_read 的原始结果解析为记录切片
// false/null 结果视为空集合
func DecodeRecords[T any](raw json.RawMessage) ([]T, error) {
	s := string(raw)
	if raw == nil || s == "false" || s == "null" || s == "" {
		return nil, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}
