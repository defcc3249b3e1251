package model

import (
	"encoding/json"
	"testing"

	"github.com/lib/pq"
)

func TestProductMarshalRestoresRefs(t *testing.T) {
	p := Product{
		SyncedModel:  SyncedModel{ID: 1},
		Name:         "Oil Filter",
		CategoryID:   7,
		CategoryName: "Filters",
		BrandID:      3,
		BrandName:    "Toyota",
		ImageURL:     "http://odoo.local/web/image/product.template/1/image_512",
		BranchIDs:    pq.Int64Array{11, 12},
		SearchTerms:  pq.StringArray{"oil filter", "toyota"},
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}

	category, ok := out["category"].(map[string]interface{})
	if !ok {
		t.Fatalf("category 应为对象: %v", out["category"])
	}
	if category["id"] != float64(7) || category["name"] != "Filters" {
		t.Errorf("分类引用错误: %v", category)
	}
	brand, ok := out["brand"].(map[string]interface{})
	if !ok {
		t.Fatalf("brand 应为对象: %v", out["brand"])
	}
	if brand["id"] != float64(3) || brand["name"] != "Toyota" {
		t.Errorf("品牌引用错误: %v", brand)
	}
	if out["image_url"] != "http://odoo.local/web/image/product.template/1/image_512" {
		t.Errorf("图片地址错误: %v", out["image_url"])
	}
	terms, ok := out["search_terms"].([]interface{})
	if !ok || len(terms) != 2 {
		t.Errorf("搜索词错误: %v", out["search_terms"])
	}
	branches, ok := out["branch_ids"].([]interface{})
	if !ok || len(branches) != 2 {
		t.Errorf("门店列表错误: %v", out["branch_ids"])
	}

	// 扁平存储列不对外泄露
	for _, hidden := range []string{"category_id", "category_name", "brand_id", "brand_name"} {
		if _, leaked := out[hidden]; leaked {
			t.Errorf("扁平列 %s 不应出现在序列化结果中", hidden)
		}
	}
}

func TestProductMarshalNullRefs(t *testing.T) {
	p := Product{SyncedModel: SyncedModel{ID: 2}, Name: "Generic Part"}

	raw, err := json.Marshal(&p)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"category", "brand", "image_url"} {
		val, present := out[key]
		if !present {
			t.Errorf("%s 键应存在", key)
		}
		if val != nil {
			t.Errorf("%s 应为 null, got %v", key, val)
		}
	}
	// 数组字段缺省为空列表而非 null
	if terms, ok := out["search_terms"].([]interface{}); !ok || len(terms) != 0 {
		t.Errorf("search_terms 应为空列表: %v", out["search_terms"])
	}
}
