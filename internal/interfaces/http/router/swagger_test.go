package router

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/scg/portal/docs"
)

func TestSwagger_ServesDocument(t *testing.T) {
	engine := gin.New()
	engine.GET("/swagger/*any", Swagger())

	w := serve(engine, http.MethodGet, "/swagger/openapi.json")

	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "SCG Portal API", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/customers/{customer_id}/reports/{service_id}")
}

func TestSwagger_ServesUI(t *testing.T) {
	engine := gin.New()
	engine.GET("/swagger/*any", Swagger())

	w := serve(engine, http.MethodGet, "/swagger/index.html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-initializer.js")

	w = serve(engine, http.MethodGet, "/swagger/swagger-initializer.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `url: "openapi.json"`)
}
