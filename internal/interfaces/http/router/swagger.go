package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag/v2"
)

const openAPIDocument = "/openapi.json"

// Swagger serves the Swagger UI on /swagger/*any. The UI loads the OpenAPI
// document registered with swag from /swagger/openapi.json.
func Swagger() gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("openapi.json"))
	return func(c *gin.Context) {
		if c.Param("any") != openAPIDocument {
			ui(c)
			return
		}
		doc, err := swag.ReadDoc()
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
