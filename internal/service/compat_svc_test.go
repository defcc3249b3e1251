package service

import (
	"testing"

	"alsaji_export_v1_202608/internal/model"
)

func intPtr(v int) *int { return &v }

func compatSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Products: []model.Product{
			product(10, "Oil Filter", 15000, 7, "Filters", 3, "Toyota"),
			product(11, "Brake Pad", 80000, 8, "Brakes", 3, "Toyota"),
		},
		Compatibility: []model.CompatibilityRecord{
			{
				SyncedModel:      model.SyncedModel{ID: 1},
				ProductID:        10,
				VehicleModelID:   20,
				VehicleModelName: "Camry",
				BrandID:          30,
				BrandName:        "Toyota",
				FromYear:         intPtr(2010),
				ToYear:           intPtr(2015),
			},
			{
				SyncedModel:      model.SyncedModel{ID: 2},
				ProductID:        11,
				VehicleModelID:   20,
				VehicleModelName: "Camry",
				BrandID:          30,
				BrandName:        "Toyota",
				FromYear:         nil,
				ToYear:           intPtr(2015),
			},
			// 商品集中不存在的商品：不进索引
			{
				SyncedModel:      model.SyncedModel{ID: 3},
				ProductID:        999,
				VehicleModelID:   21,
				VehicleModelName: "Corolla",
				BrandID:          30,
			},
			// 重复记录：同车型同商品只收录一次
			{
				SyncedModel:      model.SyncedModel{ID: 4},
				ProductID:        10,
				VehicleModelID:   20,
				VehicleModelName: "Camry",
				BrandID:          30,
				FromYear:         intPtr(2010),
				ToYear:           intPtr(2015),
			},
		},
	}
}

func TestBuildIndexDropsEmptyEntries(t *testing.T) {
	svc := NewCompatService()
	entries := svc.BuildIndex(compatSnapshot()).Entries()

	if len(entries) != 1 {
		t.Fatalf("期望 1 个车型条目, got %d", len(entries))
	}
	if entries[0].VehicleModelID != 20 {
		t.Errorf("条目车型错误: %+v", entries[0])
	}
	// 两个商品，重复记录去重
	if len(entries[0].CompatibleProducts) != 2 {
		t.Errorf("期望 2 个去重商品, got %d", len(entries[0].CompatibleProducts))
	}
}

func TestGetCompatibleVehicles(t *testing.T) {
	svc := NewCompatService()
	index := svc.BuildIndex(compatSnapshot())

	vehicles := index.GetCompatibleVehicles(10)
	if len(vehicles) != 1 || vehicles[0].VehicleModelName != "Camry" {
		t.Errorf("反查结果错误: %+v", vehicles)
	}

	if got := index.GetCompatibleVehicles(999); len(got) != 0 {
		t.Errorf("未知商品不应命中: %+v", got)
	}
}

func TestGetProductsByVehicleYearBounds(t *testing.T) {
	svc := NewCompatService()
	snapshot := compatSnapshot()

	// 2012 落在 [2010, 2015]，两条记录都命中
	matches := svc.GetProductsByVehicle(snapshot, 30, 20, 2012)
	if len(matches) != 2 {
		t.Fatalf("2012 年期望 2 个商品, got %d", len(matches))
	}

	// 2016 超出 to_year，均不命中
	if got := svc.GetProductsByVehicle(snapshot, 30, 20, 2016); len(got) != 0 {
		t.Errorf("2016 年不应命中: %+v", got)
	}

	// 2008 早于首条的 from_year，但次条 from_year 缺省视为无界
	matches = svc.GetProductsByVehicle(snapshot, 30, 20, 2008)
	if len(matches) != 1 || matches[0].ID != 11 {
		t.Errorf("2008 年应只命中无下界记录: %+v", matches)
	}

	// 不带年份：全部命中（去重后）
	matches = svc.GetProductsByVehicle(snapshot, 30, 20, 0)
	if len(matches) != 2 {
		t.Errorf("无年份查询应命中 2 个商品, got %d", len(matches))
	}
}

func TestGetProductsByVehicleDedupe(t *testing.T) {
	svc := NewCompatService()
	snapshot := compatSnapshot()

	// 商品 10 有两条适配记录，结果按商品去重
	matches := svc.GetProductsByVehicle(snapshot, 0, 20, 0)
	seen := map[int64]int{}
	for _, m := range matches {
		seen[m.ID]++
	}
	if seen[10] != 1 {
		t.Errorf("商品 10 出现 %d 次, 应为 1", seen[10])
	}
}

func TestMatchesYearUnboundedSides(t *testing.T) {
	rec := model.CompatibilityRecord{FromYear: nil, ToYear: intPtr(2015)}
	if !rec.MatchesYear(1990) {
		t.Error("无下界记录应匹配任意早年份")
	}
	if rec.MatchesYear(2016) {
		t.Error("2016 超出上界")
	}

	open := model.CompatibilityRecord{}
	if !open.MatchesYear(2050) {
		t.Error("双侧无界应匹配任意年份")
	}
	if open.YearRangeLabel() != "All Years" {
		t.Errorf("双侧无界文本错误: %q", open.YearRangeLabel())
	}
}
