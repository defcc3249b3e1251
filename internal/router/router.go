package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alsaji_export_v1_202608/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	catalogCtl *controller.CatalogController,
	exportCtl *controller.ExportController) {

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 商品
		products := api.Group("/products")
		{
			products.GET("", catalogCtl.GetProducts)
			products.GET("/:id", catalogCtl.GetProductDetail)
			products.GET("/:id/vehicles", catalogCtl.GetProductVehicles)
		}

		// 参考数据
		api.GET("/categories", catalogCtl.GetCategories)
		api.GET("/brands", catalogCtl.GetBrands)
		api.GET("/branches", catalogCtl.GetBranches)

		// 车辆
		vehicles := api.Group("/vehicles")
		{
			vehicles.GET("/brands", catalogCtl.GetVehicleBrands)
			vehicles.GET("/models", catalogCtl.GetVehicleModels)
			vehicles.GET("/products", catalogCtl.GetVehicleProducts)
		}

		// 过滤面与搜索
		api.GET("/filters", catalogCtl.GetFilters)
		api.GET("/search/suggestions", catalogCtl.SearchSuggestions)

		// 导出管理
		export := api.Group("/export")
		{
			export.POST("/run", exportCtl.TriggerExport)
			export.GET("/status", exportCtl.GetStatus)
		}
	}
}
