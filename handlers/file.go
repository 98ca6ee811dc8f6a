package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"drivebox/middleware"
	"drivebox/models"
	"drivebox/services"
)

type FileHandler struct {
	hierarchy  *services.HierarchyService
	storage    services.ObjectStorage
	accessLogs services.AccessLogStore
}

func NewFileHandler(hierarchy *services.HierarchyService, storage services.ObjectStorage, accessLogs services.AccessLogStore) *FileHandler {
	return &FileHandler{
		hierarchy:  hierarchy,
		storage:    storage,
		accessLogs: accessLogs,
	}
}

type CreateFileRequest struct {
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Size     int64  `json:"size"`
	FolderID *uint  `json:"folder_id"`
}

type UpdateFileRequest struct {
	Name    *string `json:"name"`
	IsTrash *bool   `json:"is_trash"`
}

// ListFiles 列出文件
// @Summary 列出文件
// @Tags File
// @Produce json
// @Param folderId query string false "文件夹ID，null 或 0 表示根目录，缺省表示全部"
// @Param showTrash query bool false "是否查看回收站" default(false)
// @Success 200
// @Router /api/files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	owner := middleware.OwnerID(c)

	filter := services.FileFilter{}

	// folderId 缺省表示全部文件夹，null/0 表示仅根目录
	if raw, ok := c.GetQuery("folderId"); ok {
		if raw == "null" || raw == "0" || raw == "" {
			filter.RootOnly = true
		} else {
			folderID, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder ID"})
				return
			}
			id := uint(folderID)
			filter.FolderID = &id
		}
	}

	showTrash, err := strconv.ParseBool(c.DefaultQuery("showTrash", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid showTrash value"})
		return
	}
	filter.ShowTrash = showTrash

	files, err := h.hierarchy.ListFiles(owner, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "files retrieved successfully",
		"data":    files,
	})
}

// CreateFile 登记文件元数据（字节已经在对象存储中）
// @Summary 登记文件元数据
// @Tags File
// @Accept json
// @Produce json
// @Param body body CreateFileRequest true "文件元数据"
// @Success 201
// @Router /api/files [post]
func (h *FileHandler) CreateFile(c *gin.Context) {
	owner := middleware.OwnerID(c)

	var req CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and url are required"})
		return
	}

	file, err := h.hierarchy.CreateFile(owner, services.CreateFileInput{
		Name:     req.Name,
		URL:      req.URL,
		Size:     req.Size,
		FolderID: req.FolderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "file created successfully",
		"data":    file,
	})
}

// UpdateFile 重命名或移入/移出回收站
// @Summary 更新文件（重命名或回收站状态）
// @Tags File
// @Accept json
// @Produce json
// @Param id path int true "文件ID"
// @Param body body UpdateFileRequest true "name 或 is_trash 至少一项"
// @Success 200
// @Router /api/files/{id} [patch]
func (h *FileHandler) UpdateFile(c *gin.Context) {
	owner := middleware.OwnerID(c)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file ID"})
		return
	}

	var req UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == nil && req.IsTrash == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name or is_trash is required"})
		return
	}

	var file *models.File
	if req.Name != nil {
		file, err = h.hierarchy.RenameFile(owner, uint(fileID), *req.Name)
	} else {
		file, err = h.hierarchy.SetTrash(owner, uint(fileID), *req.IsTrash)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "file updated successfully",
		"data":    file,
	})
}

// DeleteFile 删除文件：第一次移入回收站，第二次永久删除
// @Summary 删除文件
// @Tags File
// @Produce json
// @Param id path int true "文件ID"
// @Success 200
// @Router /api/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	owner := middleware.OwnerID(c)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file ID"})
		return
	}

	result, err := h.hierarchy.DeleteFile(c.Request.Context(), owner, uint(fileID))
	if err != nil {
		respondError(c, err)
		return
	}

	if result == services.FileDeleted {
		h.recordAccess(c, uint(fileID), owner, "", models.AccessActionPurge)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "file deleted successfully",
		"result":  string(result),
	})
}

// UploadFile 上传文件
// @Summary 上传文件
// @Tags File
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文件"
// @Param folderId formData int false "目标文件夹ID"
// @Success 201
// @Router /api/files/upload [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	owner := middleware.OwnerID(c)

	// 获取上传的文件
	src, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to get file: " + err.Error()})
		return
	}
	defer src.Close()

	// 目标文件夹（可选）
	var folderID *uint
	if raw := c.PostForm("folderId"); raw != "" && raw != "null" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder ID"})
			return
		}
		parsed := uint(id)
		folderID = &parsed
	}

	// 先落盘字节，再写元数据
	obj, err := h.storage.Put(c.Request.Context(), src, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), fileHeader.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file: " + err.Error()})
		return
	}

	file, err := h.hierarchy.CreateFile(owner, services.CreateFileInput{
		Name:        obj.Name,
		URL:         obj.URL,
		ObjectKey:   obj.Key,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        obj.Size,
		FolderID:    folderID,
	})
	if err != nil {
		// 元数据写入失败，回收刚落盘的对象
		if delErr := h.storage.Delete(c.Request.Context(), obj.Key); delErr != nil {
			log.Printf("回收存储对象失败 (key=%s): %v", obj.Key, delErr)
		}
		respondError(c, err)
		return
	}

	h.recordAccess(c, file.ID, owner, file.Name, models.AccessActionUpload)

	c.JSON(http.StatusCreated, gin.H{
		"message": "file uploaded successfully",
		"data":    file,
	})
}

// DownloadFile 下载文件
// @Summary 下载文件
// @Tags File
// @Produce application/octet-stream
// @Param id path int true "文件ID"
// @Success 200
// @Router /api/files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	owner := middleware.OwnerID(c)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file ID"})
		return
	}

	file, err := h.hierarchy.GetFile(owner, uint(fileID))
	if err != nil {
		respondError(c, err)
		return
	}

	if file.ObjectKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file has no stored object"})
		return
	}

	data, err := h.storage.Get(c.Request.Context(), file.ObjectKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download file: " + err.Error()})
		return
	}

	h.recordAccess(c, file.ID, owner, file.Name, models.AccessActionDownload)

	c.Header("Content-Disposition", "attachment; filename="+file.Name)
	c.Data(http.StatusOK, file.ContentType, data)
}

// GetPresignedURL 获取预签名URL（用于预览私有文件，仅S3存储）
// @Summary 获取文件预签名URL
// @Tags File
// @Produce json
// @Param id path int true "文件ID"
// @Param expiration query int false "过期时间（秒）" default(3600)
// @Success 200 {object} models.DownloadResponse
// @Router /api/files/{id}/presigned-url [get]
func (h *FileHandler) GetPresignedURL(c *gin.Context) {
	owner := middleware.OwnerID(c)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file ID"})
		return
	}

	file, err := h.hierarchy.GetFile(owner, uint(fileID))
	if err != nil {
		respondError(c, err)
		return
	}

	expirationSeconds, _ := strconv.Atoi(c.DefaultQuery("expiration", "3600"))

	url, err := h.storage.PresignURL(c.Request.Context(), file.ObjectKey,
		time.Duration(expirationSeconds)*time.Second)
	if err != nil {
		respondError(c, err)
		return
	}

	h.recordAccess(c, file.ID, owner, file.Name, models.AccessActionPreview)

	c.JSON(http.StatusOK, gin.H{
		"message": "presigned URL generated successfully",
		"data": models.DownloadResponse{
			URL:      url,
			FileName: file.Name,
		},
	})
}

// GetAccessLogs 获取文件访问日志
// @Summary 获取文件访问日志
// @Tags File
// @Produce json
// @Param id path int true "文件ID"
// @Success 200
// @Router /api/files/{id}/access-logs [get]
func (h *FileHandler) GetAccessLogs(c *gin.Context) {
	owner := middleware.OwnerID(c)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file ID"})
		return
	}

	// 校验所有权后再查日志
	if _, err := h.hierarchy.GetFile(owner, uint(fileID)); err != nil {
		respondError(c, err)
		return
	}

	logs, err := h.accessLogs.ListByFile(c.Request.Context(), owner, uint(fileID), 50)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "access logs retrieved successfully",
		"data":    logs,
	})
}

// recordAccess 记录访问日志，失败只打日志
func (h *FileHandler) recordAccess(c *gin.Context, fileID uint, owner, fileName, action string) {
	entry := &models.FileAccessLog{
		FileID:   fileID,
		UserID:   owner,
		Action:   action,
		FileName: fileName,
		ClientIP: c.ClientIP(),
	}
	if err := h.accessLogs.Record(c.Request.Context(), entry); err != nil {
		log.Printf("记录访问日志失败 (file=%d, action=%s): %v", fileID, action, err)
	}
}
