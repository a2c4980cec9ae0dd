package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"texnomart-server/cache"
	"texnomart-server/models"
	"texnomart-server/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const productImageFolder = "products"

// imagesForProduct fetches the nested images array for one product.
func imagesForProduct(productID uuid.UUID) []gin.H {
	query := `SELECT id, url, is_primary FROM images WHERE product_id = $1 ORDER BY created_at`

	rows, err := DB.Query(query, productID)
	if err != nil {
		return []gin.H{}
	}
	defer rows.Close()

	images := make([]gin.H, 0, 4)
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.URL, &img.IsPrimary); err != nil {
			continue
		}
		images = append(images, gin.H{
			"id":         img.ID,
			"image":      img.URL,
			"is_primary": img.IsPrimary,
		})
	}
	return images
}

// productsForCategory fetches the nested products array for one
// category, images included.
func productsForCategory(categoryID uuid.UUID) []gin.H {
	query := `SELECT id, name, description, price, category_id FROM products WHERE category_id = $1 ORDER BY name`

	rows, err := DB.Query(query, categoryID)
	if err != nil {
		return []gin.H{}
	}
	defer rows.Close()

	products := make([]gin.H, 0, 8)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID); err != nil {
			continue
		}
		products = append(products, productJSON(&p))
	}
	return products
}

func productJSON(p *models.Product) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.CategoryID,
		"images":      imagesForProduct(p.ID),
	}
}

// GetProducts lists products filtered by category and exact price.
// Each distinct query string gets its own cache entry; unrecognized
// parameters are ignored by the SQL but still key the cache.
func GetProducts(c *gin.Context) {
	cacheKey := cache.ProductListKey(c.Request.URL.RawQuery)
	if data, found := Cache.Get(cacheKey); found {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	query := `SELECT id, name, description, price, category_id FROM products`
	var conds []string
	var args []interface{}

	if v := c.Query("category"); v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category filter"})
			return
		}
		args = append(args, categoryID)
		conds = append(conds, "category_id = $"+strconv.Itoa(len(args)))
	}
	if v := c.Query("price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price filter"})
			return
		}
		args = append(args, price)
		conds = append(conds, "price = $"+strconv.Itoa(len(args)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := make([]gin.H, 0, 16)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID); err != nil {
			continue
		}
		products = append(products, productJSON(&p))
	}

	response := gin.H{"products": products}
	if data, err := json.Marshal(response); err == nil {
		Cache.Set(cacheKey, data, cache.DefaultTTL)
	}
	c.JSON(http.StatusOK, response)
}

func GetProduct(c *gin.Context) {
	productID := c.Param("id")

	cacheKey := cache.ProductKey(productID)
	if data, found := Cache.Get(cacheKey); found {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	var p models.Product
	query := `SELECT id, name, description, price, category_id FROM products WHERE id = $1`
	err := DB.QueryRow(query, productID).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		}
		return
	}

	response := productJSON(&p)
	if data, err := json.Marshal(response); err == nil {
		Cache.Set(cacheKey, data, cache.DefaultTTL)
	}
	c.JSON(http.StatusOK, response)
}

type productInput struct {
	Name        string
	Description string
	Price       int64
	CategoryID  uuid.UUID
}

// bindProductInput reads a product payload from either a JSON body or
// a multipart form. Responds with 400 itself when the payload is bad.
func bindProductInput(c *gin.Context) (*productInput, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") ||
		c.ContentType() == "application/x-www-form-urlencoded" {
		name := c.PostForm("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return nil, false
		}
		price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative integer"})
			return nil, false
		}
		categoryID, err := uuid.Parse(c.PostForm("category"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return nil, false
		}
		return &productInput{
			Name:        name,
			Description: c.PostForm("description"),
			Price:       price,
			CategoryID:  categoryID,
		}, true
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Price       *int64 `json:"price" binding:"required"`
		Category    string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative integer"})
		return nil, false
	}
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return nil, false
	}
	return &productInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  categoryID,
	}, true
}

func categoryExists(categoryID uuid.UUID) bool {
	var exists bool
	if err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return false
	}
	return exists
}

// insertImage stores an image row; when it is primary, prior primary
// rows for the product are demoted in the same transaction so at most
// one primary exists per product.
func insertImage(productID uuid.UUID, url string, isPrimary bool) (uuid.UUID, error) {
	tx, err := DB.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if isPrimary {
		if _, err := tx.Exec(`UPDATE images SET is_primary = false WHERE product_id = $1 AND is_primary = true`, productID); err != nil {
			return uuid.Nil, err
		}
	}

	imageID := uuid.New()
	if _, err := tx.Exec(`INSERT INTO images (id, product_id, url, is_primary) VALUES ($1, $2, $3, $4)`,
		imageID, productID, url, isPrimary); err != nil {
		return uuid.Nil, err
	}

	return imageID, tx.Commit()
}

// replacePrimaryImage deletes the product's primary image rows and
// inserts url as the new primary, atomically.
func replacePrimaryImage(productID uuid.UUID, url string) (uuid.UUID, error) {
	tx, err := DB.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM images WHERE product_id = $1 AND is_primary = true`, productID); err != nil {
		return uuid.Nil, err
	}

	imageID := uuid.New()
	if _, err := tx.Exec(`INSERT INTO images (id, product_id, url, is_primary) VALUES ($1, $2, $3, true)`,
		imageID, productID, url); err != nil {
		return uuid.Nil, err
	}

	return imageID, tx.Commit()
}

// uploadFormImage stores the "image" form file if one was attached and
// returns its URL. ok is false only when an attached file failed.
func uploadFormImage(c *gin.Context) (url string, attached bool, ok bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", false, true
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", true, false
	}
	defer file.Close()

	url, err = services.Storage.Upload(file, fileHeader.Filename, productImageFolder)
	if err != nil {
		return "", true, false
	}
	return url, true, true
}

// CreateProduct inserts a product, with an optional attached image
// file that becomes the primary image.
func CreateProduct(c *gin.Context) {
	input, ok := bindProductInput(c)
	if !ok {
		return
	}
	if !categoryExists(input.CategoryID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	productID := uuid.New()
	_, err := DB.Exec(`INSERT INTO products (id, name, description, price, category_id) VALUES ($1, $2, $3, $4, $5)`,
		productID, input.Name, input.Description, input.Price, input.CategoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	// The row exists from this point, whatever happens to the image
	DB.NotifySaved(models.Product{}.TableName(), productID.String())

	if url, attached, ok := uploadFormImage(c); attached {
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		if _, err := insertImage(productID, url, true); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
	}

	c.JSON(http.StatusCreated, productJSON(&models.Product{
		ID:          productID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
	}))
}

// UpdateProduct replaces the product fields; an attached image file
// replaces the current primary image.
func UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	input, ok := bindProductInput(c)
	if !ok {
		return
	}
	if !categoryExists(input.CategoryID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	result, err := DB.Exec(`UPDATE products SET name = $1, description = $2, price = $3, category_id = $4, updated_at = now() WHERE id = $5`,
		input.Name, input.Description, input.Price, input.CategoryID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	// The row is updated from this point, whatever happens to the image
	DB.NotifySaved(models.Product{}.TableName(), productID.String())

	if url, attached, ok := uploadFormImage(c); attached {
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		if _, err := replacePrimaryImage(productID, url); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
	}

	c.JSON(http.StatusOK, productJSON(&models.Product{
		ID:          productID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
	}))
}

func DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := DB.Exec(`DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	Cache.Delete(cache.ProductKey(productID))
	Cache.DeletePattern(cache.ProductListPrefix())
	Cache.Delete(cache.CategoryListKey)

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
