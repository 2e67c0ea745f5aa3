package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the envelope of every HTTP reply; Code mirrors the HTTP status.
type Body struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

// PageData is one page of a listing.
type PageData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data, "")
}

// Page replies with one page of a listing.
func Page(c *gin.Context, items interface{}, total int64, page, size int) {
	Success(c, PageData{Items: items, Total: total, Page: page, Size: size})
}

func Error(c *gin.Context, status int, msg string) {
	JSON(c, status, gin.H{}, msg)
}

func JSON(c *gin.Context, status int, data interface{}, msg string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Body{
		Code: status,
		Data: data,
		Msg:  msg,
	})
}
