package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/api/dto"
	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/internal/repository"
	"alsaji_export_v1_202608/internal/service"
	"alsaji_export_v1_202608/pkg/utils"
)

const (
	snapshotCacheKey = "catalog:snapshot"
	snapshotCacheTTL = 5 * time.Minute
)

// CatalogController 目录查询接口
// 聚合类接口（/filters、品牌汇总、车辆索引）基于库内镜像的快照计算并短缓存
type CatalogController struct {
	products      repository.ProductRepository
	categories    repository.CategoryRepository
	brands        repository.BrandRepository
	branches      repository.BranchRepository
	vehicleBrands repository.VehicleBrandRepository
	vehicleModels repository.VehicleModelRepository
	compat        repository.CompatibilityRepository
	aggregates    *service.AggregateService
	compatSvc     *service.CompatService
}

// NewCatalogController 创建目录控制器
func NewCatalogController(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	branches repository.BranchRepository,
	vehicleBrands repository.VehicleBrandRepository,
	vehicleModels repository.VehicleModelRepository,
	compat repository.CompatibilityRepository,
	aggregates *service.AggregateService,
	compatSvc *service.CompatService,
) *CatalogController {
	return &CatalogController{
		products:      products,
		categories:    categories,
		brands:        brands,
		branches:      branches,
		vehicleBrands: vehicleBrands,
		vehicleModels: vehicleModels,
		compat:        compat,
		aggregates:    aggregates,
		compatSvc:     compatSvc,
	}
}

// loadSnapshot 从镜像库装载快照，命中缓存则直接复用
func (h *CatalogController) loadSnapshot(c *gin.Context) (*model.Snapshot, error) {
	if cached, ok := utils.GetCache(snapshotCacheKey); ok {
		if snapshot, ok := cached.(*model.Snapshot); ok {
			return snapshot, nil
		}
	}

	ctx := c.Request.Context()
	snapshot := &model.Snapshot{Degraded: map[string]string{}}

	var err error
	if snapshot.Products, err = h.products.ListAll(ctx); err != nil {
		return nil, err
	}
	if snapshot.Categories, err = h.categories.ListAll(ctx); err != nil {
		return nil, err
	}
	if snapshot.Brands, err = h.brands.ListAll(ctx); err != nil {
		return nil, err
	}
	if snapshot.Branches, err = h.branches.ListAll(ctx); err != nil {
		return nil, err
	}
	if snapshot.VehicleBrands, err = h.vehicleBrands.ListAll(ctx); err != nil {
		return nil, err
	}
	if snapshot.VehicleModels, err = h.vehicleModels.ListAll(ctx); err != nil {
		return nil, err
	}
	if snapshot.Compatibility, err = h.compat.ListAll(ctx); err != nil {
		return nil, err
	}

	utils.SetCache(snapshotCacheKey, snapshot, snapshotCacheTTL)
	return snapshot, nil
}

// ==========================================
// 1. 商品
// ==========================================

// GetProducts 商品列表
// @Summary 商品列表
// @Description 支持分类/品牌（id 或 slug）/关键词/价格区间/库存/车辆适配过滤与分页
// @Tags Catalog
// @Produce json
// @Router /api/products [get]
func (h *CatalogController) GetProducts(c *gin.Context) {
	var req dto.ProductListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.ProductFilter{
		CategoryID: req.CategoryID,
		BrandID:    req.BrandID,
		Keyword:    req.Keyword,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		InStock:    req.InStock,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	// slug 过滤：id 未给时按 slug 解析，slug 不存在返回空结果
	if filter.CategoryID == 0 && req.CategorySlug != "" {
		category, err := h.categories.GetBySlug(c.Request.Context(), req.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				h.emptyProductPage(c, req)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		filter.CategoryID = category.ID
	}
	if filter.BrandID == 0 && req.BrandSlug != "" {
		brand, err := h.brands.GetBySlug(c.Request.Context(), req.BrandSlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				h.emptyProductPage(c, req)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		filter.BrandID = brand.ID
	}

	// 车辆适配过滤：先从适配索引算出命中商品 id，再限定列表查询
	if req.Make > 0 || req.Model > 0 || req.Year > 0 {
		snapshot, err := h.loadSnapshot(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		matches := h.compatSvc.GetProductsByVehicle(snapshot, req.Make, req.Model, req.Year)
		if len(matches) == 0 {
			h.emptyProductPage(c, req)
			return
		}
		ids := make([]int64, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		filter.IDs = ids
	}

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

func (h *CatalogController) emptyProductPage(c *gin.Context, req dto.ProductListReq) {
	c.JSON(http.StatusOK, gin.H{
		"products":  []model.Product{},
		"total":     0,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

// GetProductDetail 商品详情
// @Summary 商品详情
// @Tags Catalog
// @Produce json
// @Router /api/products/{id} [get]
func (h *CatalogController) GetProductDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductVehicles 商品适配的车型列表
// @Summary 商品适配车型
// @Tags Catalog
// @Produce json
// @Router /api/products/{id}/vehicles [get]
func (h *CatalogController) GetProductVehicles(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	snapshot, err := h.loadSnapshot(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	vehicles := h.compatSvc.BuildIndex(snapshot).GetCompatibleVehicles(id)
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "total": len(vehicles)})
}

// ==========================================
// 2. 参考数据
// ==========================================

// GetCategories 分类列表
// @Summary 分类列表
// @Tags Catalog
// @Produce json
// @Router /api/categories [get]
func (h *CatalogController) GetCategories(c *gin.Context) {
	categories, err := h.categories.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetBrands 品牌列表（含商品数与分类交叉）
// @Summary 品牌列表
// @Tags Catalog
// @Produce json
// @Router /api/brands [get]
func (h *CatalogController) GetBrands(c *gin.Context) {
	snapshot, err := h.loadSnapshot(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.aggregates.BrandSummaries(snapshot))
}

// GetBranches 门店列表
// @Summary 门店列表
// @Tags Catalog
// @Produce json
// @Router /api/branches [get]
func (h *CatalogController) GetBranches(c *gin.Context) {
	branches, err := h.branches.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, branches)
}

// ==========================================
// 3. 车辆
// ==========================================

// GetVehicleBrands 车辆品牌列表
// @Summary 车辆品牌列表
// @Tags Vehicle
// @Produce json
// @Router /api/vehicles/brands [get]
func (h *CatalogController) GetVehicleBrands(c *gin.Context) {
	brands, err := h.vehicleBrands.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, brands)
}

// GetVehicleModels 车型列表，可按品牌过滤
// @Summary 车型列表
// @Tags Vehicle
// @Produce json
// @Router /api/vehicles/models [get]
func (h *CatalogController) GetVehicleModels(c *gin.Context) {
	var req dto.VehicleModelsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		models []model.VehicleModel
		err    error
	)
	if req.BrandID > 0 {
		models, err = h.vehicleModels.ListByBrand(c.Request.Context(), req.BrandID)
	} else {
		models, err = h.vehicleModels.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models)
}

// GetVehicleProducts 按车辆条件查适配商品
// @Summary 按车辆查商品
// @Description 年份缺省端视为无界，结果按商品去重
// @Tags Vehicle
// @Produce json
// @Router /api/vehicles/products [get]
func (h *CatalogController) GetVehicleProducts(c *gin.Context) {
	var req dto.VehicleProductsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.loadSnapshot(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	matches := h.compatSvc.GetProductsByVehicle(snapshot, req.BrandID, req.ModelID, req.Year)
	c.JSON(http.StatusOK, gin.H{"products": matches, "total": len(matches)})
}

// ==========================================
// 4. 过滤面与搜索
// ==========================================

// GetFilters 过滤面总览
// @Summary 过滤面总览
// @Description 分类/品牌/价格区间/车辆/门店各维度的过滤面
// @Tags Catalog
// @Produce json
// @Router /api/filters [get]
func (h *CatalogController) GetFilters(c *gin.Context) {
	snapshot, err := h.loadSnapshot(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.aggregates.BuildFilterData(snapshot))
}

// SearchSuggestions 搜索建议
// @Summary 搜索建议
// @Tags Catalog
// @Produce json
// @Router /api/search/suggestions [get]
func (h *CatalogController) SearchSuggestions(c *gin.Context) {
	var req dto.SearchSuggestReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 10
	}

	snapshot, err := h.loadSnapshot(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	q := strings.ToLower(strings.TrimSpace(req.Query))
	var suggestions []gin.H
	for _, p := range snapshot.Products {
		if len(suggestions) >= req.Limit {
			break
		}
		for _, term := range p.SearchTerms {
			if strings.Contains(term, q) {
				suggestions = append(suggestions, gin.H{"id": p.ID, "name": p.Name, "slug": p.Slug})
				break
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
