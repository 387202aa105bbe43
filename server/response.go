package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lanzoufetch/internal"
)

const successMessage = "Parse successful"

// fileResp is the JSON envelope of a resolved single file
type fileResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	*internal.ResolvedTarget
}

// folderResp is the JSON envelope of one folder listing page
type folderResp struct {
	Code      int                    `json:"code"`
	Msg       string                 `json:"msg"`
	Name      string                 `json:"name"`
	FileCount int                    `json:"fileCount"`
	Files     []internal.FolderEntry `json:"files"`
}

// errorResp is the JSON envelope of every failure. Code is also the HTTP status.
type errorResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Envelope returns the success envelope for a resolution
func Envelope(res *internal.Resolution) interface{} {
	if res.IsFolder() {
		files := res.Folder.Entries
		if files == nil {
			files = []internal.FolderEntry{}
		}
		return folderResp{
			Code:      http.StatusOK,
			Msg:       successMessage,
			Name:      res.Folder.Name,
			FileCount: len(files),
			Files:     files,
		}
	}
	return fileResp{
		Code:           http.StatusOK,
		Msg:            successMessage,
		ResolvedTarget: res.Target,
	}
}

// ErrorEnvelope returns the error envelope for err and the HTTP status to send it with
func ErrorEnvelope(err error) (int, interface{}) {
	le, ok := internal.AsLanzouError(err)
	if !ok {
		return http.StatusInternalServerError, errorResp{
			Code: http.StatusInternalServerError,
			Msg:  "Internal server error",
		}
	}
	return le.Code, errorResp{Code: le.Code, Msg: le.Message}
}

// SuccessResp writes the success envelope for a resolution
func SuccessResp(c *gin.Context, res *internal.Resolution) {
	c.JSON(http.StatusOK, Envelope(res))
}

// ErrorResp writes the error envelope for err and aborts the chain
func ErrorResp(c *gin.Context, err error) {
	if le, ok := internal.AsLanzouError(err); ok {
		internal.LogLanzouError(le)
	} else {
		internal.LogError("[%s] unexpected error: %v", RequestID(c), err)
	}

	status, body := ErrorEnvelope(err)
	c.AbortWithStatusJSON(status, body)
}
