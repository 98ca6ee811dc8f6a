package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drivebox/middleware"
	"drivebox/services"
)

type FolderHandler struct {
	hierarchy *services.HierarchyService
}

func NewFolderHandler(hierarchy *services.HierarchyService) *FolderHandler {
	return &FolderHandler{
		hierarchy: hierarchy,
	}
}

type FolderRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListFolders 列出文件夹
// @Summary 列出当前用户的文件夹
// @Tags Folder
// @Produce json
// @Success 200
// @Router /api/folders [get]
func (h *FolderHandler) ListFolders(c *gin.Context) {
	owner := middleware.OwnerID(c)

	folders, err := h.hierarchy.ListFolders(owner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "folders retrieved successfully",
		"data":    folders,
	})
}

// CreateFolder 创建文件夹
// @Summary 创建文件夹
// @Tags Folder
// @Accept json
// @Produce json
// @Param body body FolderRequest true "文件夹名称"
// @Success 201
// @Router /api/folders [post]
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	owner := middleware.OwnerID(c)

	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder name is required"})
		return
	}

	folder, err := h.hierarchy.CreateFolder(owner, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "folder created successfully",
		"data":    folder,
	})
}

// RenameFolder 重命名文件夹
// @Summary 重命名文件夹
// @Tags Folder
// @Accept json
// @Produce json
// @Param id path int true "文件夹ID"
// @Param body body FolderRequest true "新名称"
// @Success 200
// @Router /api/folders/{id} [patch]
func (h *FolderHandler) RenameFolder(c *gin.Context) {
	owner := middleware.OwnerID(c)

	folderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder ID"})
		return
	}

	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder name is required"})
		return
	}

	folder, err := h.hierarchy.RenameFolder(owner, uint(folderID), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "folder renamed successfully",
		"data":    folder,
	})
}

// DeleteFolder 删除文件夹（级联清理其下文件）
// @Summary 删除文件夹
// @Tags Folder
// @Produce json
// @Param id path int true "文件夹ID"
// @Success 204
// @Router /api/folders/{id} [delete]
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	owner := middleware.OwnerID(c)

	folderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder ID"})
		return
	}

	if err := h.hierarchy.DeleteFolder(c.Request.Context(), owner, uint(folderID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
