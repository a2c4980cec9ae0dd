package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"texnomart-server/cache"
	"texnomart-server/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetCategories lists all categories with their products nested. The
// response is served from cache until a write invalidates it.
func GetCategories(c *gin.Context) {
	if data, found := Cache.Get(cache.CategoryListKey); found {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	query := `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`
	rows, err := DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := make([]gin.H, 0, 16)
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			continue
		}

		categories = append(categories, gin.H{
			"id":       cat.ID,
			"name":     cat.Name,
			"products": productsForCategory(cat.ID),
		})
	}

	response := gin.H{"categories": categories}
	if data, err := json.Marshal(response); err == nil {
		Cache.Set(cache.CategoryListKey, data, cache.DefaultTTL)
	}
	c.JSON(http.StatusOK, response)
}

func GetCategory(c *gin.Context) {
	categoryID := c.Param("id")

	var cat models.Category
	query := `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`
	err := DB.QueryRow(query, categoryID).Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       cat.ID,
		"name":     cat.Name,
		"products": productsForCategory(cat.ID),
	})
}

func CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID := uuid.New()
	_, err := DB.Exec(`INSERT INTO categories (id, name) VALUES ($1, $2)`, categoryID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	Cache.Delete(cache.CategoryListKey)

	c.JSON(http.StatusCreated, gin.H{
		"id":       categoryID,
		"name":     req.Name,
		"products": []gin.H{},
		"message":  "Category created successfully",
	})
}

func UpdateCategory(c *gin.Context) {
	categoryID := c.Param("id")

	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := DB.Exec(`UPDATE categories SET name = $1, updated_at = now() WHERE id = $2`, req.Name, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	Cache.Delete(cache.CategoryListKey)

	c.JSON(http.StatusOK, gin.H{
		"id":      categoryID,
		"name":    req.Name,
		"message": "Category updated successfully",
	})
}

// DeleteCategory removes the category; products, their images and
// comments go with it through the FK cascade.
func DeleteCategory(c *gin.Context) {
	categoryID := c.Param("id")

	result, err := DB.Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	// Cascaded product rows are gone too, so product entries are stale
	Cache.Delete(cache.CategoryListKey)
	Cache.DeletePattern(cache.ProductListPrefix())

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
