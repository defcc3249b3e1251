package model

// Snapshot 单轮导出抓取到的完整数据集
// Degraded 记录降级为空集的参考资源及原因（商品为必需资源，不会出现在其中）
type Snapshot struct {
	Products      []Product
	Categories    []Category
	Brands        []Brand
	Branches      []Branch
	VehicleBrands []VehicleBrand
	VehicleModels []VehicleModel
	Compatibility []CompatibilityRecord

	Degraded map[string]string
}

// Counts 各资源条数，用于轮次记录与元数据
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"products":              len(s.Products),
		"categories":            len(s.Categories),
		"brands":                len(s.Brands),
		"branches":              len(s.Branches),
		"vehicle_brands":        len(s.VehicleBrands),
		"vehicle_models":        len(s.VehicleModels),
		"compatibility_records": len(s.Compatibility),
	}
}
