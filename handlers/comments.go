package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"texnomart-server/models"
	"texnomart-server/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const commentFileFolder = "comments"

func commentJSON(cm *models.Comment) gin.H {
	return gin.H{
		"id":           cm.ID,
		"body":         cm.Body,
		"rating":       cm.Rating,
		"user_id":      cm.UserID,
		"product_id":   cm.ProductID,
		"good_comment": cm.GoodComment,
		"bad_comment":  cm.BadComment,
		"file_url":     cm.FileURL,
		"created_at":   cm.CreatedAt,
	}
}

func scanComment(row interface{ Scan(...interface{}) error }) (*models.Comment, error) {
	var cm models.Comment
	var userID sql.NullString
	var good, bad, fileURL sql.NullString
	err := row.Scan(&cm.ID, &cm.Body, &cm.Rating, &userID, &cm.ProductID, &good, &bad, &fileURL, &cm.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		if id, err := uuid.Parse(userID.String); err == nil {
			cm.UserID = &id
		}
	}
	if good.Valid {
		cm.GoodComment = &good.String
	}
	if bad.Valid {
		cm.BadComment = &bad.String
	}
	if fileURL.Valid {
		cm.FileURL = &fileURL.String
	}
	return &cm, nil
}

const commentColumns = `id, body, rating, user_id, product_id, good_comment, bad_comment, file_url, created_at`

func GetComments(c *gin.Context) {
	rows, err := DB.Query(`SELECT ` + commentColumns + ` FROM comments ORDER BY created_at`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	defer rows.Close()

	comments := make([]gin.H, 0, 16)
	for rows.Next() {
		cm, err := scanComment(rows)
		if err != nil {
			continue
		}
		comments = append(comments, commentJSON(cm))
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func GetComment(c *gin.Context) {
	cm, ok := fetchComment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, commentJSON(cm))
}

func fetchComment(c *gin.Context) (*models.Comment, bool) {
	commentID := c.Param("id")

	row := DB.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = $1`, commentID)
	cm, err := scanComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		}
		return nil, false
	}
	return cm, true
}

type commentInput struct {
	Body        string
	Rating      int
	ProductID   string
	GoodComment *string
	BadComment  *string
}

// bindCommentInput reads a comment payload from JSON or a multipart
// form. Responds with 400 itself when the payload is bad. ProductID is
// left unparsed so a missing field and an unknown product stay
// distinguishable.
func bindCommentInput(c *gin.Context) (*commentInput, bool) {
	var input commentInput

	if ct := c.ContentType(); ct == "multipart/form-data" || ct == "application/x-www-form-urlencoded" {
		input.Body = c.PostForm("body")
		input.ProductID = c.PostForm("product_id")
		if input.Body == "" || c.PostForm("rating") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body and rating are required"})
			return nil, false
		}
		rating, err := strconv.Atoi(c.PostForm("rating"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return nil, false
		}
		input.Rating = rating
		if v := c.PostForm("good_comment"); v != "" {
			input.GoodComment = &v
		}
		if v := c.PostForm("bad_comment"); v != "" {
			input.BadComment = &v
		}
	} else {
		var req struct {
			Body        string  `json:"body" binding:"required"`
			Rating      *int    `json:"rating" binding:"required"`
			ProductID   string  `json:"product_id"`
			GoodComment *string `json:"good_comment"`
			BadComment  *string `json:"bad_comment"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		input.Body = req.Body
		input.Rating = *req.Rating
		input.ProductID = req.ProductID
		input.GoodComment = req.GoodComment
		input.BadComment = req.BadComment
	}

	if !validRating(input.Rating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return nil, false
	}
	return &input, true
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// CreateComment accepts authenticated and anonymous callers. The
// product must exist before anything is written.
func CreateComment(c *gin.Context) {
	input, ok := bindCommentInput(c)
	if !ok {
		return
	}

	if input.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	var exists bool
	if err := DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var fileURL *string
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attached file"})
			return
		}
		defer file.Close()

		url, err := services.Storage.Upload(file, fileHeader.Filename, commentFileFolder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
			return
		}
		fileURL = &url
	}

	commentID := uuid.New()
	createdAt := Now()
	userID := currentUserID(c)

	_, err = DB.Exec(`INSERT INTO comments (id, body, rating, user_id, product_id, good_comment, bad_comment, file_url, created_at)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		commentID, input.Body, input.Rating, userID, productID, input.GoodComment, input.BadComment, fileURL, createdAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, commentJSON(&models.Comment{
		ID:          commentID,
		Body:        input.Body,
		Rating:      input.Rating,
		UserID:      userID,
		ProductID:   productID,
		GoodComment: input.GoodComment,
		BadComment:  input.BadComment,
		FileURL:     fileURL,
		CreatedAt:   createdAt,
	}))
}

// UpdateComment lets the owner edit within two minutes of creation.
func UpdateComment(c *gin.Context) {
	cm, ok := fetchComment(c)
	if !ok {
		return
	}

	if !isCommentOwner(cm.UserID, currentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the comment owner can update it"})
		return
	}
	if !withinWindow(cm.CreatedAt, Now(), CommentUpdateWindow) {
		c.JSON(http.StatusForbidden, gin.H{"error": "More than 2 minutes have passed to update the comment"})
		return
	}

	var req struct {
		Body        string  `json:"body" binding:"required"`
		Rating      *int    `json:"rating" binding:"required"`
		GoodComment *string `json:"good_comment"`
		BadComment  *string `json:"bad_comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validRating(*req.Rating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	// created_at stays untouched
	_, err := DB.Exec(`UPDATE comments SET body = $1, rating = $2, good_comment = $3, bad_comment = $4 WHERE id = $5`,
		req.Body, *req.Rating, req.GoodComment, req.BadComment, cm.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	cm.Body = req.Body
	cm.Rating = *req.Rating
	cm.GoodComment = req.GoodComment
	cm.BadComment = req.BadComment
	c.JSON(http.StatusOK, commentJSON(cm))
}

// DeleteComment lets the owner delete within one minute of creation.
func DeleteComment(c *gin.Context) {
	cm, ok := fetchComment(c)
	if !ok {
		return
	}

	if !isCommentOwner(cm.UserID, currentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the comment owner can delete it"})
		return
	}
	if !withinWindow(cm.CreatedAt, Now(), CommentDeleteWindow) {
		c.JSON(http.StatusForbidden, gin.H{"error": "More than 1 minute has passed to delete the comment"})
		return
	}

	if _, err := DB.Exec(`DELETE FROM comments WHERE id = $1`, cm.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
