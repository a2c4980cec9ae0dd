package handlers

import (
	"database/sql"
	"net/http"

	"texnomart-server/models"
	"texnomart-server/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetImage returns only the stored file's absolute URL.
func GetImage(c *gin.Context) {
	imageID := c.Param("id")

	var url string
	err := DB.QueryRow(`SELECT url FROM images WHERE id = $1`, imageID).Scan(&url)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

// CreateImage attaches an uploaded file to a product. A primary upload
// demotes whatever was primary before it.
func CreateImage(c *gin.Context) {
	productID, err := uuid.Parse(c.PostForm("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	var exists bool
	if err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	isPrimary := c.PostForm("is_primary") == "true"

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	url, err := services.Storage.Upload(file, fileHeader.Filename, productImageFolder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	imageID, err := insertImage(productID, url, isPrimary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	// the product's nested images changed, so its cached payloads are stale
	DB.NotifySaved(models.Product{}.TableName(), productID.String())

	c.JSON(http.StatusCreated, gin.H{
		"id":         imageID,
		"product_id": productID,
		"image_url":  url,
		"is_primary": isPrimary,
	})
}
