package odoo

// ==========================================
// DTO: Odoo JSON-RPC 2.0 请求信封
// 协议参考: POST {base}/jsonrpc
// ==========================================

// RPCRequest JSON-RPC 请求体
type RPCRequest struct {
	Jsonrpc string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  RPCParams `json:"params"`
	ID      int64     `json:"id"`
}

// RPCParams 请求参数
// service: "common"(登录) 或 "object"(业务调用)
type RPCParams struct {
	Service string        `json:"service"`
	Method  string        `json:"method"`
	Args    []interface{} `json:"args"`
}

// NewRPCRequest 构建标准请求体
func NewRPCRequest(id int64, service, method string, args []interface{}) RPCRequest {
	return RPCRequest{
		Jsonrpc: "2.0",
		Method:  "call",
		Params: RPCParams{
			Service: service,
			Method:  method,
			Args:    args,
		},
		ID: id,
	}
}
