package odoo

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ==========================================
// DTO: Odoo JSON-RPC 响应信封 + 多态字段类型
// ==========================================

// RPCResponse JSON-RPC 响应体
type RPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError Odoo 结构化错误
type RPCError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *RPCErrorData `json:"data"`
}

// RPCErrorData 错误明细
type RPCErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	if e.Data != nil && e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc error [%d]: %s", e.Code, e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc error [%d]: %s", e.Code, e.Message)
}

// ==================== 多态字段类型 ====================
//
// Odoo 的字段值是多形态的：many2one 可能是 [id, label]、false 或 null，
// 字符串字段缺失时返回 false 而非 ""。
// 这些类型在反序列化边界一次性归一，下游不再做类型判断。

// Many2One many2one 字段: [id, label] / false / null / 裸 id
type Many2One struct {
	ID    int64
	Name  string
	Valid bool
}

func (m *Many2One) UnmarshalJSON(data []byte) error {
	*m = Many2One{}
	s := string(data)
	if s == "false" || s == "null" {
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) >= 1 {
			_ = json.Unmarshal(pair[0], &m.ID)
		}
		if len(pair) >= 2 {
			_ = json.Unmarshal(pair[1], &m.Name)
		}
		m.Valid = m.ID > 0
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		m.ID = id
		m.Valid = id > 0
		return nil
	}

	// 未知形态按缺失处理，不让单条记录失败
	return nil
}

// IDList one2many/many2many 字段: []int64 / false / null
type IDList []int64

func (l *IDList) UnmarshalJSON(data []byte) error {
	*l = nil
	s := string(data)
	if s == "false" || s == "null" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		*l = ids
	}
	return nil
}

// StringOrFalse 字符串字段: string / false / null
type StringOrFalse string

func (s *StringOrFalse) UnmarshalJSON(data []byte) error {
	*s = ""
	raw := string(data)
	if raw == "false" || raw == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = StringOrFalse(str)
	}
	return nil
}

func (s StringOrFalse) String() string { return string(s) }

// FloatOrZero 数值字段: number / 数字字符串 / false / null，异常形态归 0
type FloatOrZero float64

func (f *FloatOrZero) UnmarshalJSON(data []byte) error {
	*f = 0
	raw := string(data)
	if raw == "false" || raw == "null" {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FloatOrZero(v)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.ParseFloat(str, 64); err == nil {
			*f = FloatOrZero(v)
		}
	}
	return nil
}

func (f FloatOrZero) Float64() float64 { return float64(f) }

// OptionalInt 可缺省整数字段: number / false / null
// 区分 "值为 0" 与 "没有值"（如年份区间的无界端）
type OptionalInt struct {
	Value int
	Valid bool
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	raw := string(data)
	if raw == "false" || raw == "null" {
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		o.Value = v
		o.Valid = true
	}
	return nil
}

// Ptr 转为 *int，缺失返回 nil
func (o OptionalInt) Ptr() *int {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// ==================== 原始记录 DTO ====================

// RawProduct product.template 原始记录
type RawProduct struct {
	ID            int64         `json:"id"`
	Name          StringOrFalse `json:"name"`
	DefaultCode   StringOrFalse `json:"default_code"`
	ListPrice     FloatOrZero   `json:"list_price"`
	StandardPrice FloatOrZero   `json:"standard_price"`
	Description   StringOrFalse `json:"description_sale"`
	QtyAvailable  FloatOrZero   `json:"qty_available"`
	CategIDs      IDList        `json:"public_categ_ids"`
	BrandID       Many2One      `json:"product_brand_id"`
	BranchIDs     IDList        `json:"branch_ids"`
	HasImage      bool          `json:"has_image"`
}

// RawCategory product.public.category 原始记录
type RawCategory struct {
	ID       int64         `json:"id"`
	Name     StringOrFalse `json:"name"`
	ParentID Many2One      `json:"parent_id"`
	ImageURL StringOrFalse `json:"image_url"`
}

// RawBrand product.brand 原始记录
type RawBrand struct {
	ID      int64         `json:"id"`
	Name    StringOrFalse `json:"name"`
	LogoURL StringOrFalse `json:"logo_url"`
}

// RawBranch res.company 原始记录
type RawBranch struct {
	ID   int64         `json:"id"`
	Name StringOrFalse `json:"name"`
}

// RawVehicleBrand fleet.vehicle.model.brand 原始记录
type RawVehicleBrand struct {
	ID      int64         `json:"id"`
	Name    StringOrFalse `json:"name"`
	LogoURL StringOrFalse `json:"logo_url"`
}

// RawVehicleModel fleet.vehicle.model 原始记录
type RawVehicleModel struct {
	ID      int64         `json:"id"`
	Name    StringOrFalse `json:"name"`
	BrandID Many2One      `json:"brand_id"`
}

// RawCompatibility product.vehicle.compatibility 原始记录
// 车型适配关系：商品 × 车型 × 年份区间
type RawCompatibility struct {
	ID           int64         `json:"id"`
	ProductID    Many2One      `json:"product_tmpl_id"`
	VehicleModel Many2One      `json:"vehicle_model_id"`
	BrandID      Many2One      `json:"brand_id"`
	FromYear     OptionalInt   `json:"from_year"`
	ToYear       OptionalInt   `json:"to_year"`
	CategTag     StringOrFalse `json:"categ_tag"`
}
